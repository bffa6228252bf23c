package wrangle

import (
	"fmt"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

// ComputeEQ builds the canonical EQ table. EQ publishes some series at
// sub-hourly resolution; those are averaged onto the hour after pivoting.
func ComputeEQ(raw []model.EQRecord, rule HorizonRule) (*model.WideTable, error) {
	dah := DayAhead(raw, rule, func(r model.EQRecord) (time.Time, time.Time) {
		return r.ForecastTime, r.ValueTime
	})

	long := make([]model.LongRow, 0, len(dah))
	for _, r := range dah {
		long = append(long, model.LongRow{
			ForecastTime: r.ForecastTime,
			ValueTime:    r.ValueTime,
			Key:          r.Tag,
			Production:   ProductionKey(r.Commodity, NormalizeLocation(r.Location)),
			Value:        r.Value,
		})
	}

	wide, err := Pivot(long, schema.TagCol)
	if err != nil {
		return nil, fmt.Errorf("eq: %w", err)
	}
	t := HourlyMean(wide)
	AggregateWind(t)
	t.Sort()
	return t, nil
}

// HourlyMean truncates value times to the hour and averages every column per
// (forecast_time, value_time, key). Nulls are ignored; a cell that is null in
// every source row stays null.
func HourlyMean(t *model.WideTable) *model.WideTable {
	out := model.NewWideTable(t.KeyColumn)
	out.Columns = append(out.Columns, t.Columns...)

	type cell struct {
		sum float64
		n   int
	}
	pos := make(map[pivotIndex]int)
	var sums []map[string]*cell
	for _, r := range t.Rows {
		vt := r.ValueTime.Truncate(time.Hour)
		idx := indexOf(r.ForecastTime, vt, r.Key)
		i, ok := pos[idx]
		if !ok {
			i = len(out.Rows)
			pos[idx] = i
			out.Rows = append(out.Rows, model.WideRow{ForecastTime: r.ForecastTime, ValueTime: vt, Key: r.Key})
			sums = append(sums, map[string]*cell{})
		}
		for c, v := range r.Values {
			acc, ok := sums[i][c]
			if !ok {
				acc = &cell{}
				sums[i][c] = acc
			}
			acc.sum += v
			acc.n++
		}
	}
	for i := range out.Rows {
		vals := make(map[string]float64, len(sums[i]))
		for c, acc := range sums[i] {
			vals[c] = acc.sum / float64(acc.n)
		}
		out.Rows[i].Values = vals
	}
	out.Sort()
	return out
}
