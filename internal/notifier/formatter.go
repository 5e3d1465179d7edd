package notifier

import (
	"fmt"
	"html"
	"strings"

	"MarketInsights/internal/model"
)

// FormatRunReport formats a pipeline run into a Telegram message.
func FormatRunReport(ds *model.Dataset) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>MarketInsights</b> | %s → %s\n\n",
		ds.Start.Format(model.DateFormat), ds.End.Format(model.DateFormat)))

	rows := 0
	if ds.Prices != nil {
		rows = ds.Prices.Len()
	}
	b.WriteString(fmt.Sprintf("数据源: %s | 对齐交易日: %d\n\n", html.EscapeString(ds.Source), rows))

	b.WriteString(FormatMeans(ds.Means))

	if ds.Prices != nil && ds.Prices.Len() > 1 {
		b.WriteString("\n📈 <b>区间涨跌:</b>\n")
		first, last := ds.Prices.Rows[0], ds.Prices.Rows[ds.Prices.Len()-1]
		for j, name := range ds.Prices.Columns {
			change := (last[j] - first[j]) / first[j] * 100
			b.WriteString(fmt.Sprintf("  %s: %.2f → %.2f (%+.1f%%)\n", html.EscapeString(name), first[j], last[j], change))
		}
	}

	if len(ds.Correlations.Columns) > 1 {
		b.WriteString("\n🔗 <b>日收益相关性:</b>\n")
		cols := ds.Correlations.Columns
		for i := 0; i < len(cols); i++ {
			for j := i + 1; j < len(cols); j++ {
				b.WriteString(fmt.Sprintf("  %s/%s: %+.2f\n",
					html.EscapeString(cols[i]), html.EscapeString(cols[j]), ds.Correlations.Values[i][j]))
			}
		}
	}

	return b.String()
}

// FormatMeans formats the mean adjusted close per ticker.
func FormatMeans(s model.MeanSummary) string {
	var b strings.Builder
	b.WriteString("💰 <b>平均复权收盘价:</b>\n")
	for _, r := range s.Rows {
		if model.IsMissing(r.MeanValue) {
			b.WriteString(fmt.Sprintf("  %s: n/a\n", html.EscapeString(r.Ticker)))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %.2f\n", html.EscapeString(r.Ticker), r.MeanValue))
	}
	return b.String()
}
