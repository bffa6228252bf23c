// Package schema holds the column names and fixed vocabularies shared by
// every stage of the pipeline. It has no logic beyond lookups.
package schema

import "strings"

// Key and time columns.
const (
	ForecastTimeCol  = "forecast_time"
	ValueTimeCol     = "value_time"
	DeliveryStartCol = "delivery_start"
	BiddingZoneCol   = "bidding_zone"
	TagCol           = "tag"
	PowerHourCol     = "power_hour"
)

// Raw source columns.
const (
	AssetKeyCol     = "asset_key"
	ForecastTypeCol = "forecast_type"
	CorPowerCol     = "cor_power"
	CommodityCol    = "commodity"
	LocationCol     = "location"
	ValueCol        = "value"
	SeriesIDCol     = "series_id"
	ProductionCol   = "production"
	UpdatedAtCol    = "updated_at"
)

// Production columns of the canonical wide tables.
const (
	WindCol         = "wind"
	WindOnshoreCol  = "wind_onshore"
	WindOffshoreCol = "wind_offshore"
	SolarCol        = "solar"
	LoadCol         = "load"
)

// ActualSuffix marks production columns that carry measured values.
const ActualSuffix = "_actual"

// ProductionTypes lists the comparable production columns in display order.
var ProductionTypes = []string{WindCol, WindOnshoreCol, WindOffshoreCol, SolarCol, LoadCol}

// ActualCol returns the actuals column paired with a forecast column.
func ActualCol(production string) string {
	return production + ActualSuffix
}

// IsProductionType reports whether name is one of ProductionTypes.
func IsProductionType(name string) bool {
	for _, p := range ProductionTypes {
		if p == name {
			return true
		}
	}
	return false
}

// IsWindComponent reports whether a column feeds the wind aggregate.
func IsWindComponent(name string) bool {
	return name != WindCol && strings.HasPrefix(name, WindCol)
}
