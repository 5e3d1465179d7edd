package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketInsights/internal/model"
)

func changesWithYear() *model.Table {
	return &model.Table{
		Dates: []time.Time{
			time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		Columns: []string{"SPY", "TLT", model.YearColumn},
		Rows:    [][]float64{{model.Missing(), model.Missing(), 2021}, {0.02, -0.015, 2022}},
	}
}

func TestWriteTable_LongForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, changesWithYear()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "date,ticker,value,year", lines[0])
	assert.Equal(t, "2021-12-31,SPY,,2021", lines[1])
	assert.Equal(t, "2022-01-03,SPY,0.02,2022", lines[3])
	assert.Equal(t, "2022-01-03,TLT,-0.015,2022", lines[4])
}

func TestWriteMeans(t *testing.T) {
	var buf bytes.Buffer
	s := model.MeanSummary{Rows: []model.MeanRow{{Ticker: "SPY", MeanValue: 101}, {Ticker: "USO", MeanValue: 10.25}}}
	require.NoError(t, WriteMeans(&buf, s))
	assert.Equal(t, "ticker,mean_value\nSPY,101\nUSO,10.25\n", buf.String())
}

func TestWriteDataset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ds := &model.Dataset{
		Prices: &model.Table{
			Dates:   []time.Time{time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)},
			Columns: []string{"SPY"},
			Rows:    [][]float64{{368.79}},
		},
		ChangesByYear: changesWithYear(),
		Means:         model.MeanSummary{Rows: []model.MeanRow{{Ticker: "SPY", MeanValue: 368.79}}},
	}
	require.NoError(t, WriteDataset(dir, ds))

	for _, name := range []string{PricesFile, ChangesFile, MeansFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	prices, err := os.ReadFile(filepath.Join(dir, PricesFile))
	require.NoError(t, err)
	assert.Equal(t, "date,ticker,value,year\n2021-01-04,SPY,368.79,2021\n", string(prices))
}
