package wrangle

import (
	"errors"
	"fmt"
	"time"

	"forecast-compare/internal/model"
)

// ErrDuplicateCell is returned by Pivot when two long rows fill the same cell.
var ErrDuplicateCell = errors.New("duplicate value for pivot cell")

type pivotIndex struct {
	forecastTime time.Time
	valueTime    time.Time
	key          string
}

func indexOf(ft, vt time.Time, key string) pivotIndex {
	// UTC() drops both the location and the monotonic reading, so equal
	// instants compare equal as map keys.
	return pivotIndex{forecastTime: ft.UTC(), valueTime: vt.UTC(), key: key}
}

// Pivot turns long rows into a wide table indexed on (forecast_time,
// value_time, key) with one column per production. Rows and columns keep
// first-seen order.
func Pivot(rows []model.LongRow, keyColumn string) (*model.WideTable, error) {
	t := model.NewWideTable(keyColumn)
	pos := make(map[pivotIndex]int)
	for _, r := range rows {
		idx := indexOf(r.ForecastTime, r.ValueTime, r.Key)
		i, ok := pos[idx]
		if !ok {
			i = len(t.Rows)
			pos[idx] = i
			t.Rows = append(t.Rows, model.WideRow{
				ForecastTime: r.ForecastTime,
				ValueTime:    r.ValueTime,
				Key:          r.Key,
				Values:       map[string]float64{},
			})
		}
		if _, dup := t.Rows[i].Values[r.Production]; dup {
			return nil, fmt.Errorf("%w: %s at forecast_time=%s value_time=%s %s=%q",
				ErrDuplicateCell, r.Production,
				r.ForecastTime.Format(time.RFC3339), r.ValueTime.Format(time.RFC3339),
				keyColumn, r.Key)
		}
		t.Rows[i].Values[r.Production] = r.Value
		t.AddColumn(r.Production)
	}
	return t, nil
}

// Melt is the inverse of Pivot: one long row per non-null cell, in row then
// column order.
func Melt(t *model.WideTable) []model.LongRow {
	out := make([]model.LongRow, 0, len(t.Rows)*len(t.Columns))
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			v, ok := r.Values[c]
			if !ok {
				continue
			}
			out = append(out, model.LongRow{
				ForecastTime: r.ForecastTime,
				ValueTime:    r.ValueTime,
				Key:          r.Key,
				Production:   c,
				Value:        v,
			})
		}
	}
	return out
}
