package model

import "time"

// LongRow is one forecast (or actual) value in long format.
// Key holds the bidding zone or the provider tag, depending on the table.
type LongRow struct {
	ForecastTime time.Time
	ValueTime    time.Time
	Key          string
	Production   string
	Value        float64
}

// EnforRecord is one row of the raw Enfor fundamentals snapshot.
// AssetKey looks like "dk1", "dk1_land" or "dk1_sea".
type EnforRecord struct {
	ForecastTime time.Time `json:"forecast_time"`
	ValueTime    time.Time `json:"value_time"`
	AssetKey     string    `json:"asset_key"`
	ForecastType string    `json:"forecast_type"`
	CorPower     float64   `json:"cor_power"`
}

// EQRecord is one row of the raw EQ snapshot. Value times may be sub-hourly.
type EQRecord struct {
	ForecastTime time.Time
	ValueTime    time.Time
	Tag          string
	Commodity    string
	Location     string
	Value        float64
}

// RefinitivRecord is one parsed line of a Refinitiv CSV export, enriched with
// the series catalog entry once joined.
type RefinitivRecord struct {
	SeriesID     string
	ForecastTime time.Time
	ValueTime    time.Time
	Value        float64
	Production   string
	BiddingZone  string
}

// RawActual is one revision of measured production for a delivery interval.
// Nil values were not published in that revision.
type RawActual struct {
	DeliveryStart time.Time `json:"delivery_start"`
	BiddingZone   string    `json:"bidding_zone"`
	UpdatedAt     time.Time `json:"updated_at"`

	Solar        *float64 `json:"solar"`
	WindOnshore  *float64 `json:"wind_onshore"`
	WindOffshore *float64 `json:"wind_offshore"`
	Load         *float64 `json:"load"`
}

// Series maps a vendor series id to the production type and bidding zone it
// forecasts.
type Series struct {
	ID          string `json:"id"`
	Production  string `json:"production"`
	BiddingZone string `json:"bidding_zone"`
}
