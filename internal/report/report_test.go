package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"MarketInsights/internal/model"
)

func TestWriteHead(t *testing.T) {
	d0 := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	tbl := &model.Table{
		Dates:   []time.Time{d0, d0.AddDate(0, 0, 1), d0.AddDate(0, 0, 2)},
		Columns: []string{"SPY", model.YearColumn},
		Rows:    [][]float64{{model.Missing(), 2021}, {0.0123, 2021}, {0.5, 2021}},
	}
	var buf bytes.Buffer
	WriteHead(&buf, tbl, 2)
	out := buf.String()

	assert.Contains(t, out, "2021-01-04")
	assert.Contains(t, out, "2021-01-05")
	assert.NotContains(t, out, "2021-01-06")
	assert.Contains(t, out, "NaN")
	assert.Contains(t, out, "0.0123")
	assert.Contains(t, out, " 2021 ")
	assert.Contains(t, out, "Year")
}

func TestWriteMeans(t *testing.T) {
	var buf bytes.Buffer
	WriteMeans(&buf, model.MeanSummary{Rows: []model.MeanRow{{Ticker: "SPY", MeanValue: 101}}})
	assert.Contains(t, buf.String(), "mean_value")
	assert.Contains(t, buf.String(), "101.0000")
}

func TestWriteCorrelations(t *testing.T) {
	var buf bytes.Buffer
	WriteCorrelations(&buf, model.CorrelationMatrix{})
	assert.Equal(t, "no correlations available", strings.TrimSpace(buf.String()))

	buf.Reset()
	WriteCorrelations(&buf, model.CorrelationMatrix{
		Columns: []string{"SPY", "TLT"},
		Values:  [][]float64{{1, -0.25}, {-0.25, 1}},
	})
	assert.Contains(t, buf.String(), "-0.2500")
}
