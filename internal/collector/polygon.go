package collector

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"MarketInsights/internal/model"
)

// PolygonFetcher implements Fetcher using split/dividend adjusted daily
// aggregates from polygon.io.
type PolygonFetcher struct {
	Client   *polygon.Client
	Location *time.Location
}

// NewPolygonFetcher creates a fetcher authenticated with apiKey.
func NewPolygonFetcher(apiKey string) *PolygonFetcher {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &PolygonFetcher{
		Client:   polygon.New(apiKey),
		Location: loc,
	}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) FetchAdjClose(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(model.Day(start)),
		To:         models.Millis(model.Day(end).AddDate(0, 0, 1).Add(-time.Millisecond)),
	}.WithOrder(models.Asc).WithAdjusted(true).WithLimit(50000)

	iter := f.Client.ListAggs(ctx, params)

	var aggs []models.Agg
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}
	if err := iter.Err(); err != nil {
		return model.PriceSeries{}, fmt.Errorf("polygon list aggs: %w", err)
	}
	return aggsToSeries(symbol, aggs, f.Location, start, end)
}

// aggsToSeries maps daily aggregates to trading dates in loc. With adjusted
// aggregates the close is the adjusted close.
func aggsToSeries(symbol string, aggs []models.Agg, loc *time.Location, start, end time.Time) (model.PriceSeries, error) {
	points := make([]model.PricePoint, 0, len(aggs))
	for _, a := range aggs {
		ts := time.Time(a.Timestamp).In(loc)
		points = append(points, model.PricePoint{
			Date:     time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			AdjClose: a.Close,
		})
	}
	return buildSeries(symbol, points, start, end)
}
