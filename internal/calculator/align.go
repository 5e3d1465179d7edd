package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"MarketInsights/internal/model"
)

var (
	ErrNoSeries        = errors.New("no series provided")
	ErrEmptySeries     = errors.New("series has no observations")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrDuplicateDate   = errors.New("duplicate date in series")
	ErrNoCommonDates   = errors.New("series share no common dates")
	ErrNonFinite       = errors.New("non-finite value in series")
	ErrEmptyTable      = errors.New("table has no rows")
)

// Align inner-joins the series on their dates. Only dates present in every
// series are kept; columns are named after the series symbols in argument order.
func Align(series ...model.PriceSeries) (*model.Table, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	lookups := make([]map[time.Time]float64, len(series))
	seen := make(map[string]bool, len(series))
	for i, s := range series {
		if seen[s.Symbol] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, s.Symbol)
		}
		seen[s.Symbol] = true
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySeries, s.Symbol)
		}
		m := make(map[time.Time]float64, len(s.Points))
		for _, p := range s.Points {
			d := model.Day(p.Date)
			if _, dup := m[d]; dup {
				return nil, fmt.Errorf("%w: %s %s", ErrDuplicateDate, s.Symbol, d.Format(model.DateFormat))
			}
			if math.IsNaN(p.AdjClose) || math.IsInf(p.AdjClose, 0) {
				return nil, fmt.Errorf("%w: %s %s", ErrNonFinite, s.Symbol, d.Format(model.DateFormat))
			}
			m[d] = p.AdjClose
		}
		lookups[i] = m
	}

	var dates []time.Time
	for d := range lookups[0] {
		common := true
		for _, m := range lookups[1:] {
			if _, ok := m[d]; !ok {
				common = false
				break
			}
		}
		if common {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, ErrNoCommonDates
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	t := &model.Table{
		Dates:   dates,
		Columns: make([]string, len(series)),
		Rows:    make([][]float64, len(dates)),
	}
	for j, s := range series {
		t.Columns[j] = s.Symbol
	}
	for i, d := range dates {
		row := make([]float64, len(series))
		for j, m := range lookups {
			row[j] = m[d]
		}
		t.Rows[i] = row
	}
	return t, nil
}
