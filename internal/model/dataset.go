package model

import "time"

// Dataset is everything one pipeline run produces.
type Dataset struct {
	Source        string
	Start         time.Time
	End           time.Time
	Series        []PriceSeries
	Prices        *Table // aligned adjusted closes
	Changes       *Table // day-over-day fractional change, first row missing
	ChangesByYear *Table // Changes plus the Year column
	Means         MeanSummary
	Correlations  CorrelationMatrix
	CollectedAt   time.Time
}
