package compare

import (
	"sort"
	"strings"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

type zoneHour struct {
	valueTime time.Time
	zone      string
}

// Join pairs every forecast row with the actuals of the same value time.
// Zone-keyed forecasts are matched on the bidding zone as well; tag-keyed
// forecasts are paired with every zone's actuals and carry their tag
// through. Forecast rows without any actuals are dropped.
func Join(provider string, forecast, actuals *model.WideTable) *Dataset {
	ds := &Dataset{Provider: provider, KeyColumn: forecast.KeyColumn}

	byHour := make(map[time.Time][]int)
	byZoneHour := make(map[zoneHour]int)
	for i, a := range actuals.Rows {
		vt := a.ValueTime.UTC()
		byHour[vt] = append(byHour[vt], i)
		byZoneHour[zoneHour{vt, strings.ToLower(a.Key)}] = i
	}

	zoneKeyed := forecast.KeyColumn == schema.BiddingZoneCol
	for _, f := range forecast.Rows {
		vt := f.ValueTime.UTC()
		if zoneKeyed {
			i, ok := byZoneHour[zoneHour{vt, strings.ToLower(f.Key)}]
			if !ok {
				continue
			}
			ds.Rows = append(ds.Rows, joined(f, actuals.Rows[i]))
			continue
		}
		for _, i := range byHour[vt] {
			ds.Rows = append(ds.Rows, joined(f, actuals.Rows[i]))
		}
	}

	sort.SliceStable(ds.Rows, func(i, j int) bool {
		a, b := ds.Rows[i], ds.Rows[j]
		if !a.ValueTime.Equal(b.ValueTime) {
			return a.ValueTime.Before(b.ValueTime)
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Zone < b.Zone
	})
	return ds
}

func joined(f, a model.WideRow) JoinedRow {
	return JoinedRow{
		ForecastTime: f.ForecastTime,
		ValueTime:    f.ValueTime,
		Key:          f.Key,
		Zone:         strings.ToLower(a.Key),
		Forecast:     f.Values,
		Actual:       a.Values,
	}
}

// Tags returns the distinct keys of a tag-keyed dataset in sorted order.
// Zone-keyed datasets have no tags.
func (d *Dataset) Tags() []string {
	if d.KeyColumn != schema.TagCol {
		return nil
	}
	return d.distinct(func(r JoinedRow) string { return r.Key })
}

// Zones returns the distinct bidding zones present in the dataset.
func (d *Dataset) Zones() []string {
	return d.distinct(func(r JoinedRow) string { return r.Zone })
}

func (d *Dataset) distinct(get func(JoinedRow) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Rows {
		v := get(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Bounds returns the first and last value time of the dataset.
func (d *Dataset) Bounds() (time.Time, time.Time) {
	if len(d.Rows) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.Rows[0].ValueTime, d.Rows[len(d.Rows)-1].ValueTime
}
