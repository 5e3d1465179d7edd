package model

import (
	"fmt"
	"time"
)

// YearColumn is the name of the column added by calendar-year labelling.
const YearColumn = "Year"

// Table is a date-indexed table of float columns.
// Rows[i][j] is the value of Columns[j] on Dates[i].
type Table struct {
	Dates   []time.Time
	Columns []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Dates) }

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Dates:   append([]time.Time(nil), t.Dates...),
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]float64(nil), row...)
	}
	return c
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.Len() {
		n = t.Len()
	}
	if n < 0 {
		n = 0
	}
	c := t.Clone()
	c.Dates = c.Dates[:n]
	c.Rows = c.Rows[:n]
	return c
}

// MeanRow is one (ticker, mean) pair of a MeanSummary.
type MeanRow struct {
	Ticker    string  `csv:"ticker" json:"ticker"`
	MeanValue float64 `csv:"mean_value" json:"mean_value"`
}

// MeanSummary holds the per-column means of a table in column order.
type MeanSummary struct {
	Rows []MeanRow
}

// Get returns the mean for ticker.
func (m MeanSummary) Get(ticker string) (float64, bool) {
	for _, r := range m.Rows {
		if r.Ticker == ticker {
			return r.MeanValue, true
		}
	}
	return 0, false
}

// CorrelationMatrix holds pairwise Pearson coefficients.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// Get returns the coefficient between a and b.
func (c CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, name := range c.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Values[i][j], true
}
