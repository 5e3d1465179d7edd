package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketInsights/internal/model"
)

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func series(symbol string, start string, values ...float64) model.PriceSeries {
	d := day(start)
	s := model.PriceSeries{Symbol: symbol}
	for i, v := range values {
		s.Points = append(s.Points, model.PricePoint{Date: d.AddDate(0, 0, i), AdjClose: v})
	}
	return s
}

func scenario() []model.PriceSeries {
	return []model.PriceSeries{
		series("SPY", "2021-01-01", 100, 102, 101),
		series("TLT", "2021-01-01", 50, 49, 49.5),
		series("USO", "2021-01-01", 10, 10.5, 10.2),
	}
}

func TestAlign_Scenario(t *testing.T) {
	table, err := Align(scenario()...)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"SPY", "TLT", "USO"}, table.Columns)
	assert.Equal(t, day("2021-01-01"), table.Dates[0])
	assert.Equal(t, []float64{101, 49.5, 10.2}, table.Rows[2])
}

func TestAlign_KeepsIntersectionOnly(t *testing.T) {
	a := series("A", "2021-01-01", 1, 2, 3, 4, 5)  // Jan 1..5
	b := series("B", "2021-01-03", 6, 7, 8, 9)     // Jan 3..6
	c := series("C", "2021-01-02", 10, 11, 12, 13) // Jan 2..5

	// no Jan 3 for C
	c.Points = append(c.Points[:1], c.Points[2:]...)

	table, err := Align(a, b, c)
	require.NoError(t, err)

	assert.Equal(t, 3, len(table.Columns))
	require.Equal(t, 2, table.Len())
	assert.Equal(t, day("2021-01-04"), table.Dates[0])
	assert.Equal(t, day("2021-01-05"), table.Dates[1])
	assert.Equal(t, []float64{4, 7, 12}, table.Rows[0])
	assert.Equal(t, []float64{5, 8, 13}, table.Rows[1])
}

func TestAlign_ColumnOrderFollowsArguments(t *testing.T) {
	s := scenario()
	table, err := Align(s[2], s[0], s[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"USO", "SPY", "TLT"}, table.Columns)
	assert.Equal(t, []float64{10, 100, 50}, table.Rows[0])
}

func TestAlign_SortsUnorderedInput(t *testing.T) {
	s := series("A", "2021-01-01", 1, 2, 3)
	s.Points[0], s.Points[2] = s.Points[2], s.Points[0]
	table, err := Align(s)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, table.Rows[0])
	assert.Equal(t, []float64{3}, table.Rows[2])
}

func TestAlign_Errors(t *testing.T) {
	_, err := Align()
	assert.ErrorIs(t, err, ErrNoSeries)

	_, err = Align(series("A", "2021-01-01", 1), model.PriceSeries{Symbol: "B"})
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = Align(series("A", "2021-01-01", 1), series("A", "2021-01-01", 2))
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = Align(series("A", "2021-01-01", 1, 2), series("B", "2021-02-01", 1, 2))
	assert.ErrorIs(t, err, ErrNoCommonDates)

	dup := series("A", "2021-01-01", 1, 2)
	dup.Points[1].Date = dup.Points[0].Date
	_, err = Align(dup)
	assert.ErrorIs(t, err, ErrDuplicateDate)

	_, err = Align(series("A", "2021-01-01", 9.9, model.Missing(), 10.1))
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Align(series("A", "2021-01-01", 1, 2), series("B", "2021-01-01", math.Inf(1), 2))
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestToPercentChange_Scenario(t *testing.T) {
	table, err := Align(scenario()...)
	require.NoError(t, err)

	pct := ToPercentChange(table)
	require.Equal(t, 3, pct.Len())
	for _, v := range pct.Rows[0] {
		assert.True(t, model.IsMissing(v))
	}
	want := [][]float64{
		{0.02, -0.02, 0.05},
		{-0.0098, 0.0102, -0.0286},
	}
	for i, row := range want {
		for j, v := range row {
			assert.InDelta(t, v, pct.Rows[i+1][j], 1e-4)
		}
	}
	// input untouched
	assert.Equal(t, []float64{100, 50, 10}, table.Rows[0])
}

func TestToPercentChange_ConstantSeries(t *testing.T) {
	const n = 10
	values := make([]float64, n)
	for i := range values {
		values[i] = 42
	}
	table, err := Align(series("C", "2021-06-01", values...))
	require.NoError(t, err)

	defined := DropMissing(ToPercentChange(table))
	require.Equal(t, n-1, defined.Len())
	for _, row := range defined.Rows {
		assert.Equal(t, 0.0, row[0])
	}
}

func TestToPercentChange_RoundTrip(t *testing.T) {
	values := []float64{100, 101.5, 99.2, 99.2, 120.75, 80.1, 80.4}
	table, err := Align(series("X", "2022-03-01", values...))
	require.NoError(t, err)

	changes, err := ToPercentChange(table).Column("X")
	require.NoError(t, err)

	rebuilt := Reconstruct(values[0], changes)
	require.Len(t, rebuilt, len(values))
	for i := range values {
		assert.InDelta(t, values[i], rebuilt[i], 1e-9)
	}
}

func TestToPercentChange_MissingPropagates(t *testing.T) {
	table := &model.Table{
		Dates:   []time.Time{day("2021-01-01"), day("2021-01-02"), day("2021-01-03")},
		Columns: []string{"A"},
		Rows:    [][]float64{{1}, {model.Missing()}, {3}},
	}
	pct := ToPercentChange(table)
	assert.True(t, model.IsMissing(pct.Rows[1][0]))
	assert.True(t, model.IsMissing(pct.Rows[2][0]))
}

func TestSummarize_Scenario(t *testing.T) {
	table, err := Align(scenario()...)
	require.NoError(t, err)

	summary, err := Summarize(table)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 3)

	assert.Equal(t, "SPY", summary.Rows[0].Ticker)
	assert.InDelta(t, 101.0, summary.Rows[0].MeanValue, 1e-9)
	assert.InDelta(t, 49.5, summary.Rows[1].MeanValue, 1e-9)
	assert.InDelta(t, 10.233, summary.Rows[2].MeanValue, 1e-3)
}

func TestSummarize_SingleRow(t *testing.T) {
	table, err := Align(series("A", "2021-01-04", 3.5), series("B", "2021-01-04", -7))
	require.NoError(t, err)

	summary, err := Summarize(table)
	require.NoError(t, err)
	a, _ := summary.Get("A")
	b, _ := summary.Get("B")
	assert.Equal(t, 3.5, a)
	assert.Equal(t, -7.0, b)
}

func TestSummarize_MissingAndEmpty(t *testing.T) {
	table, err := Align(series("A", "2021-01-04", 1, 2, 3))
	require.NoError(t, err)

	summary, err := Summarize(ToPercentChange(table))
	require.NoError(t, err)
	assert.True(t, model.IsMissing(summary.Rows[0].MeanValue))

	_, err = Summarize(&model.Table{Columns: []string{"A"}})
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestDeriveYear_TwoYears(t *testing.T) {
	table, err := Align(series("A", "2021-12-29", 1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	labelled, err := DeriveYear(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", model.YearColumn}, labelled.Columns)
	years, err := labelled.Column(model.YearColumn)
	require.NoError(t, err)

	distinct := map[float64]bool{}
	for i, y := range years {
		distinct[y] = true
		if labelled.Dates[i].Before(day("2022-01-01")) {
			assert.Equal(t, 2021.0, y)
		} else {
			assert.Equal(t, 2022.0, y)
		}
	}
	assert.Len(t, distinct, 2)

	// original columns and input untouched
	values, _ := labelled.Column("A")
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, values)
	assert.Equal(t, []string{"A"}, table.Columns)
	assert.Len(t, table.Rows[0], 1)

	_, err = DeriveYear(labelled)
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestCorrelate(t *testing.T) {
	table, err := Align(
		series("A", "2021-01-01", 1, 2, 3, 4),
		series("B", "2021-01-01", 2, 4, 6, 8),
		series("C", "2021-01-01", 4, 3, 2, 1),
	)
	require.NoError(t, err)

	m, err := Correlate(table)
	require.NoError(t, err)

	ab, ok := m.Get("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 1.0, ab, 1e-9)
	ac, _ := m.Get("A", "C")
	assert.InDelta(t, -1.0, ac, 1e-9)
	aa, _ := m.Get("A", "A")
	assert.Equal(t, 1.0, aa)

	_, err = Correlate(ToPercentChange(table).Head(2))
	assert.Error(t, err)
}
