package wrangle

import (
	"strings"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

type revisionKey struct {
	deliveryStart time.Time
	zone          string
}

// ExtractLatest keeps the most recent revision per (delivery start, bidding
// zone), comparing zones case-insensitively. Equal revision times resolve to
// the later input row.
func ExtractLatest(raw []model.RawActual) []model.RawActual {
	pos := make(map[revisionKey]int)
	out := make([]model.RawActual, 0, len(raw))
	for _, a := range raw {
		k := revisionKey{deliveryStart: a.DeliveryStart.UTC(), zone: strings.ToLower(a.BiddingZone)}
		i, ok := pos[k]
		if !ok {
			pos[k] = len(out)
			out = append(out, a)
			continue
		}
		if !a.UpdatedAt.Before(out[i].UpdatedAt) {
			out[i] = a
		}
	}
	return out
}

// actualColumns are the production columns renamed with the _actual suffix.
var actualColumns = map[string]bool{
	schema.SolarCol:        true,
	schema.WindCol:         true,
	schema.WindOffshoreCol: true,
	schema.WindOnshoreCol:  true,
	schema.LoadCol:         true,
}

// ComputeActuals reduces raw actuals to their latest revision and returns the
// canonical actuals table: lower-case bidding zones, derived wind, every
// production column suffixed with _actual, sorted by delivery time.
func ComputeActuals(raw []model.RawActual) *model.WideTable {
	t := model.NewWideTable(schema.BiddingZoneCol)
	for _, a := range ExtractLatest(raw) {
		vals := map[string]float64{}
		for _, f := range []struct {
			col string
			v   *float64
		}{
			{schema.SolarCol, a.Solar},
			{schema.WindOnshoreCol, a.WindOnshore},
			{schema.WindOffshoreCol, a.WindOffshore},
			{schema.LoadCol, a.Load},
		} {
			if f.v != nil {
				vals[f.col] = *f.v
				t.AddColumn(f.col)
			}
		}
		t.Rows = append(t.Rows, model.WideRow{
			ValueTime: a.DeliveryStart,
			Key:       strings.ToLower(a.BiddingZone),
			Values:    vals,
		})
	}

	AggregateWind(t)
	t.RenameColumns(func(c string) string {
		if actualColumns[c] {
			return schema.ActualCol(c)
		}
		return c
	})
	t.KeepColumns(func(c string) bool { return strings.HasSuffix(c, schema.ActualSuffix) })
	t.Sort()
	return t
}
