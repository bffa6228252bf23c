// Package wrangle turns raw provider snapshots into canonical wide tables.
//
// Every provider goes through the same steps in a provider-specific order:
// select the day-ahead forecasts (DayAhead), build production keys from the
// vendor's type and location fields, pivot long rows into one column per
// production key (Pivot), and derive the total wind column (AggregateWind).
// The compute functions are pure; reading and writing snapshots is left to
// the data package.
package wrangle
