package wrangle

import (
	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

// AggregateWind sets the wind column to the sum of every wind_* column.
// Missing components count as zero; a row without any component keeps
// whatever wind value it already had.
func AggregateWind(t *model.WideTable) {
	var components []string
	for _, c := range t.Columns {
		if schema.IsWindComponent(c) {
			components = append(components, c)
		}
	}
	if len(components) == 0 {
		return
	}
	t.AddColumn(schema.WindCol)
	for _, r := range t.Rows {
		sum, present := 0.0, false
		for _, c := range components {
			if v, ok := r.Values[c]; ok {
				sum += v
				present = true
			}
		}
		if present {
			r.Values[schema.WindCol] = sum
		}
	}
}
