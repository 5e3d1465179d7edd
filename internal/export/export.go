package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"MarketInsights/internal/model"
)

// File names written by WriteDataset.
const (
	PricesFile  = "prices.csv"
	ChangesFile = "pct_change.csv"
	MeansFile   = "means.csv"
)

// Value is a table cell; missing values are written as an empty field.
type Value float64

func (v Value) MarshalCSV() (string, error) {
	if model.IsMissing(float64(v)) {
		return "", nil
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 64), nil
}

// Record is one observation of a table in long form, the layout plotting
// tools take for hue/size/style encodings.
type Record struct {
	Date   string `csv:"date"`
	Ticker string `csv:"ticker"`
	Value  Value  `csv:"value"`
	Year   int    `csv:"year"`
}

// Records flattens t into long form. A Year column, when present, labels the
// records instead of becoming a ticker.
func Records(t *model.Table) []*Record {
	yearIdx := t.ColumnIndex(model.YearColumn)
	out := make([]*Record, 0, t.Len()*len(t.Columns))
	for i, row := range t.Rows {
		year := t.Dates[i].Year()
		if yearIdx >= 0 {
			year = int(row[yearIdx])
		}
		for j, v := range row {
			if j == yearIdx {
				continue
			}
			out = append(out, &Record{
				Date:   t.Dates[i].Format(model.DateFormat),
				Ticker: t.Columns[j],
				Value:  Value(v),
				Year:   year,
			})
		}
	}
	return out
}

// WriteTable writes t in long form.
func WriteTable(w io.Writer, t *model.Table) error {
	records := Records(t)
	return gocsv.Marshal(&records, w)
}

// WriteMeans writes the summary as ticker,mean_value rows.
func WriteMeans(w io.Writer, s model.MeanSummary) error {
	rows := make([]*meanRecord, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = &meanRecord{Ticker: r.Ticker, MeanValue: Value(r.MeanValue)}
	}
	return gocsv.Marshal(&rows, w)
}

type meanRecord struct {
	Ticker    string `csv:"ticker"`
	MeanValue Value  `csv:"mean_value"`
}

// WriteDataset writes prices, percent changes and means into dir.
func WriteDataset(dir string, ds *model.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	changes := ds.ChangesByYear
	if changes == nil {
		changes = ds.Changes
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{PricesFile, func(w io.Writer) error { return WriteTable(w, ds.Prices) }},
		{ChangesFile, func(w io.Writer) error { return WriteTable(w, changes) }},
		{MeansFile, func(w io.Writer) error { return WriteMeans(w, ds.Means) }},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return err
		}
		log.Infof("wrote %s", path)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
