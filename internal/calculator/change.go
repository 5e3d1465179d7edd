package calculator

import "MarketInsights/internal/model"

// ToPercentChange replaces every column with its period-over-period
// fractional change. The first row has no predecessor and is left missing.
func ToPercentChange(t *model.Table) *model.Table {
	out := &model.Table{
		Dates:   append(t.Dates[:0:0], t.Dates...),
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		next := make([]float64, len(row))
		for j, v := range row {
			if i == 0 {
				next[j] = model.Missing()
				continue
			}
			prev := t.Rows[i-1][j]
			if model.IsMissing(prev) || model.IsMissing(v) {
				next[j] = model.Missing()
				continue
			}
			next[j] = (v - prev) / prev
		}
		out.Rows[i] = next
	}
	return out
}

// DropMissing returns a copy of t without the rows holding any missing cell.
func DropMissing(t *model.Table) *model.Table {
	out := &model.Table{Columns: append([]string(nil), t.Columns...)}
	for i, row := range t.Rows {
		if hasMissing(row) {
			continue
		}
		out.Dates = append(out.Dates, t.Dates[i])
		out.Rows = append(out.Rows, append([]float64(nil), row...))
	}
	return out
}

// Reconstruct rebuilds a value column from its first value and the
// fractional changes of the following periods. changes[0] is ignored.
func Reconstruct(first float64, changes []float64) []float64 {
	if len(changes) == 0 {
		return nil
	}
	out := make([]float64, len(changes))
	out[0] = first
	for i := 1; i < len(changes); i++ {
		out[i] = out[i-1] * (1 + changes[i])
	}
	return out
}

func hasMissing(row []float64) bool {
	for _, v := range row {
		if model.IsMissing(v) {
			return true
		}
	}
	return false
}
