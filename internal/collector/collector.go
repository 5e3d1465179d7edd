package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"MarketInsights/internal/calculator"
	"MarketInsights/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Series map[string]model.PriceSeries
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchAdjClose(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	if err, ok := m.Errors[symbol]; ok {
		return model.PriceSeries{}, err
	}
	if s, ok := m.Series[symbol]; ok {
		return buildSeries(symbol, s.Points, start, end)
	}
	return buildSeries(symbol, generateMockPoints(symbol, m.Price, start, end), start, end)
}

// generateMockPoints produces one point per weekday. The path is derived from
// the symbol so different tickers move differently but reproducibly.
func generateMockPoints(symbol string, basePrice float64, start, end time.Time) []model.PricePoint {
	if basePrice <= 0 {
		basePrice = 100
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	phase := float64(h.Sum32()%360) * math.Pi / 180

	var points []model.PricePoint
	i := 0
	for d := model.Day(start); !d.After(model.Day(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/10+phase) + float64(i)*0.0005)
		points = append(points, model.PricePoint{Date: d, AdjClose: p})
		i++
	}
	return points
}

// Collector orchestrates data fetching and table preparation.
type Collector struct {
	Fetcher Fetcher
	Tickers []string
	Start   time.Time
	End     time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, tickers []string, start, end time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Tickers: tickers, Start: start, End: end}
}

// Collect fetches every ticker in order and derives all tables. A failed
// fetch aborts the run.
func (c *Collector) Collect(ctx context.Context) (*model.Dataset, error) {
	ds := &model.Dataset{
		Source: c.Fetcher.Name(),
		Start:  model.Day(c.Start),
		End:    model.Day(c.End),
		Series: make([]model.PriceSeries, 0, len(c.Tickers)),
	}

	for _, symbol := range c.Tickers {
		s, err := c.Fetcher.FetchAdjClose(ctx, symbol, ds.Start, ds.End)
		if err != nil {
			return nil, &FetchError{Source: c.Fetcher.Name(), Symbol: symbol, Err: err}
		}
		log.Infof("fetched %s: %d points from %s", symbol, s.Len(), c.Fetcher.Name())
		ds.Series = append(ds.Series, s)
	}

	prices, err := calculator.Align(ds.Series...)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	ds.Prices = prices

	ds.Changes = calculator.ToPercentChange(prices)
	if ds.ChangesByYear, err = calculator.DeriveYear(ds.Changes); err != nil {
		return nil, fmt.Errorf("derive year: %w", err)
	}
	if ds.Means, err = calculator.Summarize(prices); err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	if corr, err := calculator.Correlate(ds.Changes); err != nil {
		log.Warnf("correlation skipped: %v", err)
	} else {
		ds.Correlations = corr
	}

	ds.CollectedAt = time.Now()
	log.Infof("collected %d aligned rows for %v", prices.Len(), prices.Columns)
	return ds, nil
}
