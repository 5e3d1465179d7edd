package recorder

import (
	"time"

	"github.com/google/uuid"

	"MarketInsights/internal/model"
)

// RunSnapshot holds everything persisted for one pipeline run.
type RunSnapshot struct {
	ID      uuid.UUID
	Dataset *model.Dataset
}

// NewRunSnapshot wraps ds with a fresh run id.
func NewRunSnapshot(ds *model.Dataset) *RunSnapshot {
	return &RunSnapshot{ID: uuid.New(), Dataset: ds}
}

// Recorder persists prepared tables for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	Close() error
}

// cell is one (date, ticker, value) entry of a table in long form.
type cell struct {
	date   time.Time
	ticker string
	value  float64
}

// cells flattens t, skipping missing values and the Year label.
func cells(t *model.Table) []cell {
	if t == nil {
		return nil
	}
	out := make([]cell, 0, t.Len()*len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			if t.Columns[j] == model.YearColumn || model.IsMissing(v) {
				continue
			}
			out = append(out, cell{date: t.Dates[i], ticker: t.Columns[j], value: v})
		}
	}
	return out
}
