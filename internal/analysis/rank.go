package analysis

import (
	"sort"

	"forecast-compare/internal/compare"
)

type RankedProvider struct {
	Provider string `json:"provider"`
	Accuracy
}

// RankProviders runs the same query against every dataset and sorts the
// providers by ascending RMSE. Providers with no comparable rows sort last.
func RankProviders(e *compare.Engine, datasets []*compare.Dataset, q compare.Query) ([]RankedProvider, error) {
	out := make([]RankedProvider, 0, len(datasets))
	for _, ds := range datasets {
		pq := q
		pq.Provider = ds.Provider
		pq.Tag = ""
		res, err := e.Run(ds, pq)
		if err != nil {
			return nil, err
		}
		out = append(out, RankedProvider{Provider: ds.Provider, Accuracy: ComputeAccuracy(res.Rows)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Count == 0) != (b.Count == 0) {
			return b.Count == 0
		}
		return a.RMSE < b.RMSE
	})
	return out, nil
}
