package wrangle

import (
	"fmt"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

// ComputeMeteologica builds the canonical Meteologica table. The vendor
// already delivers day-ahead runs, so no horizon filter is applied.
func ComputeMeteologica(raw []model.LongRow, market *time.Location) (*model.WideTable, error) {
	local := make([]model.LongRow, len(raw))
	for i, r := range raw {
		r.ForecastTime = r.ForecastTime.In(market)
		r.ValueTime = r.ValueTime.In(market)
		local[i] = r
	}
	t, err := Pivot(local, schema.BiddingZoneCol)
	if err != nil {
		return nil, fmt.Errorf("meteologica: %w", err)
	}
	AggregateWind(t)
	t.Sort()
	return t, nil
}
