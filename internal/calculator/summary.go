package calculator

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"MarketInsights/internal/model"
)

// Summarize computes the arithmetic mean of every column. No cell is skipped:
// a column holding a missing cell has a missing mean.
func Summarize(t *model.Table) (model.MeanSummary, error) {
	if t.Len() == 0 {
		return model.MeanSummary{}, ErrEmptyTable
	}
	summary := model.MeanSummary{Rows: make([]model.MeanRow, 0, len(t.Columns))}
	for _, name := range t.Columns {
		col, err := t.Column(name)
		if err != nil {
			return model.MeanSummary{}, err
		}
		mean := model.Missing()
		if !hasMissing(col) {
			mean, err = stats.Mean(col)
			if err != nil {
				return model.MeanSummary{}, fmt.Errorf("mean of %s: %w", name, err)
			}
		}
		summary.Rows = append(summary.Rows, model.MeanRow{Ticker: name, MeanValue: mean})
	}
	return summary, nil
}

// Correlate computes pairwise Pearson correlation between the columns, using
// only the rows where every column is defined.
func Correlate(t *model.Table) (model.CorrelationMatrix, error) {
	complete := DropMissing(t)
	if complete.Len() < 2 {
		return model.CorrelationMatrix{}, fmt.Errorf("correlate: need at least 2 complete rows, got %d", complete.Len())
	}
	cols := make([][]float64, len(complete.Columns))
	for j, name := range complete.Columns {
		col, err := complete.Column(name)
		if err != nil {
			return model.CorrelationMatrix{}, err
		}
		cols[j] = col
	}

	n := len(cols)
	m := model.CorrelationMatrix{
		Columns: append([]string(nil), complete.Columns...),
		Values:  make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		m.Values[i][i] = 1
		for j := i + 1; j < n; j++ {
			r, err := stats.Correlation(cols[i], cols[j])
			if err != nil {
				r = model.Missing()
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}
