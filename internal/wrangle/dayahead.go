package wrangle

import (
	"time"

	"forecast-compare/internal/schema"
)

// HorizonRule selects forecasts issued the calendar day before delivery at a
// fixed hour. Dates are taken in DateZone and the issue hour in HourZone; a nil
// zone means UTC.
type HorizonRule struct {
	IssueHour int
	DateZone  *time.Location
	HourZone  *time.Location
}

// EnforRule issues at 11:00 market time.
func EnforRule(market *time.Location) HorizonRule {
	return HorizonRule{IssueHour: schema.EnforIssueHour, DateZone: market, HourZone: market}
}

// UTCIssueRule compares market-time dates but a UTC issue hour, which is how
// EQ and Refinitiv stamp their runs.
func UTCIssueRule(hour int, market *time.Location) HorizonRule {
	return HorizonRule{IssueHour: hour, DateZone: market, HourZone: time.UTC}
}

// Matches reports whether a forecast issued at forecastTime for valueTime is a
// day-ahead forecast under the rule.
func (r HorizonRule) Matches(forecastTime, valueTime time.Time) bool {
	dz, hz := zoneOrUTC(r.DateZone), zoneOrUTC(r.HourZone)
	if civilDate(valueTime.In(dz)).Sub(civilDate(forecastTime.In(dz))) != 24*time.Hour {
		return false
	}
	return forecastTime.In(hz).Hour() == r.IssueHour
}

// DayAhead keeps the rows whose (forecast, value) times match rule. No match
// yields an empty slice.
func DayAhead[T any](rows []T, rule HorizonRule, times func(T) (forecastTime, valueTime time.Time)) []T {
	out := make([]T, 0)
	for _, row := range rows {
		ft, vt := times(row)
		if rule.Matches(ft, vt) {
			out = append(out, row)
		}
	}
	return out
}

// civilDate drops the clock and zone so that date differences are whole days
// even across DST changes.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func zoneOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
