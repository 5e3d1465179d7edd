package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"MarketInsights/internal/model"
)

var (
	// ErrEmptyRange is returned when the source has no observation in the requested range.
	ErrEmptyRange = errors.New("no data in requested range")
	// ErrUnknownSymbol is returned when the source does not know the ticker.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Fetcher retrieves the adjusted-close history of a ticker over an inclusive date range.
type Fetcher interface {
	FetchAdjClose(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}

// FetchError reports a failed fetch for one ticker.
type FetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Symbol, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// buildSeries keeps the finite points inside [start, end], sorts them by date
// and keeps the last observation of a date seen twice.
func buildSeries(symbol string, points []model.PricePoint, start, end time.Time) (model.PriceSeries, error) {
	start, end = model.Day(start), model.Day(end)
	byDate := make(map[time.Time]float64, len(points))
	for _, p := range points {
		d := model.Day(p.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if math.IsNaN(p.AdjClose) || math.IsInf(p.AdjClose, 0) {
			continue
		}
		byDate[d] = p.AdjClose
	}
	if len(byDate) == 0 {
		return model.PriceSeries{}, ErrEmptyRange
	}
	s := model.PriceSeries{
		Symbol:    symbol,
		Points:    make([]model.PricePoint, 0, len(byDate)),
		FetchedAt: time.Now(),
	}
	for d, v := range byDate {
		s.Points = append(s.Points, model.PricePoint{Date: d, AdjClose: v})
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
	return s, nil
}
