package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"forecast-compare/internal/compare"
)

// Accuracy summarizes forecast error over a set of comparison rows.
// Errors are forecast minus actual.
type Accuracy struct {
	Count int `json:"count"`

	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	Bias float64 `json:"bias"`

	MeanActual   float64 `json:"mean_actual"`
	MeanForecast float64 `json:"mean_forecast"`

	// Correlation is the Pearson correlation of actual and forecast values.
	// It is 0 when undefined (fewer than two rows or a constant series).
	Correlation float64 `json:"correlation"`
}

func ComputeAccuracy(rows []compare.Row) Accuracy {
	a := Accuracy{Count: len(rows)}
	if len(rows) == 0 {
		return a
	}

	actual := make([]float64, len(rows))
	forecast := make([]float64, len(rows))
	errs := make([]float64, len(rows))
	abs := make([]float64, len(rows))
	sq := make([]float64, len(rows))
	for i, r := range rows {
		actual[i] = r.Actual
		forecast[i] = r.Forecast
		e := r.Residual()
		errs[i] = e
		abs[i] = math.Abs(e)
		sq[i] = e * e
	}

	a.MAE = stat.Mean(abs, nil)
	a.RMSE = math.Sqrt(stat.Mean(sq, nil))
	a.Bias = stat.Mean(errs, nil)
	a.MeanActual = stat.Mean(actual, nil)
	a.MeanForecast = stat.Mean(forecast, nil)

	if len(rows) > 1 {
		if c := stat.Correlation(actual, forecast, nil); !math.IsNaN(c) {
			a.Correlation = c
		}
	}
	return a
}
