package compare

import (
	"time"
)

// JoinedRow is one forecast row paired with the actuals of the same delivery
// hour and bidding zone.
type JoinedRow struct {
	ForecastTime time.Time
	ValueTime    time.Time
	// Key is the forecast table's key: a bidding zone or a provider tag.
	Key string
	// Zone is the bidding zone of the actuals. Equal to Key for
	// zone-keyed tables.
	Zone string

	Forecast map[string]float64
	Actual   map[string]float64
}

// Dataset is one provider's canonical table joined with actuals.
type Dataset struct {
	Provider  string
	KeyColumn string
	Rows      []JoinedRow
}

// Row is one point of the comparison view for a single production type.
// This is the primary artifact for "how good was the forecast".
type Row struct {
	ValueTime    time.Time
	ForecastTime time.Time

	Key  string
	Zone string

	PowerHour int

	Actual   float64
	Forecast float64
}

// Residual returns forecast minus actual.
func (r Row) Residual() float64 { return r.Forecast - r.Actual }

type Result struct {
	Provider   string
	KeyColumn  string
	Production string
	Rows       []Row
}
