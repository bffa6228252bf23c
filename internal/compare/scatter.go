package compare

// Point is one scatter point: actual on x, forecast on y.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is the dashed y = x reference line.
type Line struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

type Scatter struct {
	Points    []Point `json:"points"`
	Reference Line    `json:"reference"`
	AxisMin   float64 `json:"axis_min"`
	AxisMax   float64 `json:"axis_max"`
}

// BuildScatter lays out the comparison plot. The reference line runs from
// the origin to (max, max) where max is the largest forecast value.
func BuildScatter(rows []Row) Scatter {
	s := Scatter{Points: make([]Point, 0, len(rows))}
	maxForecast := 0.0
	for i, r := range rows {
		s.Points = append(s.Points, Point{X: r.Actual, Y: r.Forecast})
		if i == 0 || r.Forecast > maxForecast {
			maxForecast = r.Forecast
		}
	}
	s.Reference = Line{X0: 0, Y0: 0, X1: maxForecast, Y1: maxForecast}
	s.AxisMax = maxForecast
	return s
}
