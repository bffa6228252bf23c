package model

import (
	"sort"
	"time"
)

// WideRow is one row of a canonical wide table. Values is sparse: a missing
// entry is a null cell.
type WideRow struct {
	ForecastTime time.Time
	ValueTime    time.Time
	Key          string
	Values       map[string]float64
}

// Get returns the value in column col and whether the cell is non-null.
func (r WideRow) Get(col string) (float64, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// WideTable is one row per (forecast_time, value_time, key) and one column per
// production key. Actuals tables have no forecast time and leave it zero.
type WideTable struct {
	KeyColumn string
	Columns   []string
	Rows      []WideRow
}

// NewWideTable returns an empty table keyed by keyColumn.
func NewWideTable(keyColumn string) *WideTable {
	return &WideTable{KeyColumn: keyColumn}
}

// HasColumn reports whether col is one of the value columns.
func (t *WideTable) HasColumn(col string) bool {
	return t.columnIndex(col) >= 0
}

// AddColumn appends col unless it already exists.
func (t *WideTable) AddColumn(col string) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
}

// RenameColumns applies fn to every value column name. Renames that collide
// with an existing column merge into it, later columns winning.
func (t *WideTable) RenameColumns(fn func(string) string) {
	renamed := make(map[string]string, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	seen := map[string]bool{}
	for _, c := range t.Columns {
		n := fn(c)
		renamed[c] = n
		if !seen[n] {
			seen[n] = true
			cols = append(cols, n)
		}
	}
	for i, r := range t.Rows {
		vals := make(map[string]float64, len(r.Values))
		for _, c := range t.Columns {
			if v, ok := r.Values[c]; ok {
				vals[renamed[c]] = v
			}
		}
		t.Rows[i].Values = vals
	}
	t.Columns = cols
}

// KeepColumns drops every value column for which keep returns false.
func (t *WideTable) KeepColumns(keep func(string) bool) {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if keep(c) {
			cols = append(cols, c)
			continue
		}
		for _, r := range t.Rows {
			delete(r.Values, c)
		}
	}
	t.Columns = cols
}

// Sort orders rows by forecast time, value time and key. The sort is stable so
// rows with equal keys keep their input order.
func (t *WideTable) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if !a.ForecastTime.Equal(b.ForecastTime) {
			return a.ForecastTime.Before(b.ForecastTime)
		}
		if !a.ValueTime.Equal(b.ValueTime) {
			return a.ValueTime.Before(b.ValueTime)
		}
		return a.Key < b.Key
	})
}

// Keys returns the distinct key values in first-seen order.
func (t *WideTable) Keys() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range t.Rows {
		if !seen[r.Key] {
			seen[r.Key] = true
			out = append(out, r.Key)
		}
	}
	return out
}

// ValueTimeBounds returns the earliest and latest value time, or zero times
// for an empty table.
func (t *WideTable) ValueTimeBounds() (time.Time, time.Time) {
	var lo, hi time.Time
	for i, r := range t.Rows {
		if i == 0 || r.ValueTime.Before(lo) {
			lo = r.ValueTime
		}
		if i == 0 || r.ValueTime.After(hi) {
			hi = r.ValueTime
		}
	}
	return lo, hi
}

func (t *WideTable) columnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}
