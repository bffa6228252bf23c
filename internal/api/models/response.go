package models

import (
	"time"

	"forecast-compare/internal/analysis"
	"forecast-compare/internal/compare"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ProviderInfo describes one loaded provider and its selectors.
type ProviderInfo struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	KeyColumn string   `json:"key_column"`
	Tags      []string `json:"tags,omitempty"`
	Zones     []string `json:"zones"`
	Rows      int      `json:"rows"`
}

// ProvidersResponse lists everything a client needs to build a query.
type ProvidersResponse struct {
	Providers       []ProviderInfo `json:"providers"`
	ProductionTypes []string       `json:"production_types"`
	PowerHours      []int          `json:"power_hours"`
	Window          TimeWindow     `json:"window"`
	LoadedAt        time.Time      `json:"loaded_at"`
}

// ComparisonRow is one forecast/actual pair.
type ComparisonRow struct {
	ValueTime    time.Time `json:"value_time"`
	ForecastTime time.Time `json:"forecast_time"`
	Key          string    `json:"key"`
	Zone         string    `json:"bidding_zone"`
	PowerHour    int       `json:"power_hour"`
	Actual       float64   `json:"actual"`
	Forecast     float64   `json:"forecast"`
}

// CompareResponse is the scatter plot data plus summary statistics.
type CompareResponse struct {
	Provider   string            `json:"provider"`
	Production string            `json:"type"`
	Count      int               `json:"count"`
	Scatter    compare.Scatter   `json:"scatter"`
	Accuracy   analysis.Accuracy `json:"accuracy"`
	Rows       []ComparisonRow   `json:"rows,omitempty"`
}

// RankResponse lists providers by ascending RMSE.
type RankResponse struct {
	Production string                    `json:"type"`
	Rankings   []analysis.RankedProvider `json:"rankings"`
}

// PipelineRunResponse reports a recompute of the canonical snapshots.
type PipelineRunResponse struct {
	Status    string   `json:"status"` // "success" or "partial"
	Providers []string `json:"providers"`
	Errors    []string `json:"errors,omitempty"`
	Duration  string   `json:"duration"`
}

// ToComparisonRows converts engine rows for the wire.
func ToComparisonRows(rows []compare.Row) []ComparisonRow {
	out := make([]ComparisonRow, len(rows))
	for i, r := range rows {
		out[i] = ComparisonRow{
			ValueTime:    r.ValueTime,
			ForecastTime: r.ForecastTime,
			Key:          r.Key,
			Zone:         r.Zone,
			PowerHour:    r.PowerHour,
			Actual:       r.Actual,
			Forecast:     r.Forecast,
		}
	}
	return out
}
