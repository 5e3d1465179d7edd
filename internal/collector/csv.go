package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"MarketInsights/internal/model"
)

// CSVFetcher reads <Dir>/<SYMBOL>.csv files in the Yahoo download layout.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher reading from dir.
func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

// csvBar is one row of a Yahoo history download. Extra columns are ignored.
type csvBar struct {
	Date     string `csv:"Date"`
	AdjClose string `csv:"Adj Close"`
}

func (f *CSVFetcher) FetchAdjClose(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	path := filepath.Join(f.Dir, symbol+".csv")
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", path, ErrUnknownSymbol)
	}
	if err != nil {
		return model.PriceSeries{}, err
	}
	defer file.Close()

	var bars []*csvBar
	if err := gocsv.Unmarshal(file, &bars); err != nil {
		return model.PriceSeries{}, fmt.Errorf("parse %s: %w", path, err)
	}

	points := make([]model.PricePoint, 0, len(bars))
	for _, b := range bars {
		raw := strings.TrimSpace(b.AdjClose)
		if raw == "" || raw == "null" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("parse %s: adj close %q: %w", path, raw, err)
		}
		d, err := model.ParseDate(strings.TrimSpace(b.Date))
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("parse %s: %w", path, err)
		}
		points = append(points, model.PricePoint{Date: d, AdjClose: v})
	}
	if len(bars) > 0 && len(points) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%s: no Adj Close values: %w", path, ErrEmptyRange)
	}
	return buildSeries(symbol, points, start, end)
}
