package wrangle

import (
	"fmt"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

// ComputeEnfor builds the canonical Enfor table from raw fundamentals.
func ComputeEnfor(raw []model.EnforRecord, rule HorizonRule) (*model.WideTable, error) {
	dah := DayAhead(raw, rule, func(r model.EnforRecord) (time.Time, time.Time) {
		return r.ForecastTime, r.ValueTime
	})

	long := make([]model.LongRow, 0, len(dah))
	for _, r := range dah {
		zone, location := SplitAssetKey(r.AssetKey)
		long = append(long, model.LongRow{
			ForecastTime: r.ForecastTime,
			ValueTime:    r.ValueTime,
			Key:          zone,
			Production:   ProductionKey(r.ForecastType, NormalizeLocation(location)),
			Value:        r.CorPower,
		})
	}

	t, err := Pivot(long, schema.BiddingZoneCol)
	if err != nil {
		return nil, fmt.Errorf("enfor: %w", err)
	}
	t.RenameColumns(MapAssetLocation)
	AggregateWind(t)
	t.Sort()
	return t, nil
}
