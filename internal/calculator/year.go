package calculator

import (
	"fmt"

	"MarketInsights/internal/model"
)

// DeriveYear returns a copy of t with a Year column holding the calendar
// year of each row's date.
func DeriveYear(t *model.Table) (*model.Table, error) {
	if t.ColumnIndex(model.YearColumn) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, model.YearColumn)
	}
	out := t.Clone()
	out.Columns = append(out.Columns, model.YearColumn)
	for i, d := range out.Dates {
		out.Rows[i] = append(out.Rows[i], float64(d.Year()))
	}
	return out, nil
}
