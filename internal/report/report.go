package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"MarketInsights/internal/model"
)

func formatValue(v float64) string {
	if model.IsMissing(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteHead renders the first n rows of t.
func WriteHead(w io.Writer, t *model.Table, n int) {
	head := t.Head(n)
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Date"}, head.Columns...))
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)

	yearIdx := head.ColumnIndex(model.YearColumn)
	for i, row := range head.Rows {
		line := make([]string, 0, len(row)+1)
		line = append(line, head.Dates[i].Format(model.DateFormat))
		for j, v := range row {
			if j == yearIdx {
				line = append(line, strconv.Itoa(int(v)))
				continue
			}
			line = append(line, formatValue(v))
		}
		table.Append(line)
	}
	table.Render()
}

// WriteMeans renders the mean summary.
func WriteMeans(w io.Writer, s model.MeanSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ticker", "mean_value"})
	table.SetAutoFormatHeaders(false)
	for _, r := range s.Rows {
		table.Append([]string{r.Ticker, formatValue(r.MeanValue)})
	}
	table.Render()
}

// WriteCorrelations renders the correlation matrix.
func WriteCorrelations(w io.Writer, m model.CorrelationMatrix) {
	if len(m.Columns) == 0 {
		fmt.Fprintln(w, "no correlations available")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{""}, m.Columns...))
	table.SetAutoFormatHeaders(false)
	for i, name := range m.Columns {
		line := []string{name}
		for _, v := range m.Values[i] {
			line = append(line, formatValue(v))
		}
		table.Append(line)
	}
	table.Render()
}
