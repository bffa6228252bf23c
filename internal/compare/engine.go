package compare

import (
	"fmt"
	"math"
	"sort"
	"time"

	"forecast-compare/internal/schema"
)

// Date range closure modes.
const (
	ClosedBoth = "both"
	ClosedLeft = "left"
)

// Power hour modes.
const (
	HourOfDay = "hour_of_day"
	LeadTime  = "lead_time"
)

// Options fix how queries are interpreted.
type Options struct {
	Market        *time.Location
	Closed        string
	PowerHourMode string
}

// Query selects one production pair of one provider's dataset.
// Zero dates leave that side of the range open; PowerHour 0 selects every
// hour.
type Query struct {
	Provider   string
	Tag        string
	Zone       string
	StartDate  time.Time
	EndDate    time.Time
	Production string
	PowerHour  int
}

type Engine struct {
	opts Options
}

func New(opts Options) (*Engine, error) {
	if opts.Market == nil {
		opts.Market = schema.MarketLocation()
	}
	if opts.Closed == "" {
		opts.Closed = ClosedBoth
	}
	if opts.PowerHourMode == "" {
		opts.PowerHourMode = HourOfDay
	}
	if opts.Closed != ClosedBoth && opts.Closed != ClosedLeft {
		return nil, fmt.Errorf("unknown date range closure %q", opts.Closed)
	}
	if opts.PowerHourMode != HourOfDay && opts.PowerHourMode != LeadTime {
		return nil, fmt.Errorf("unknown power hour mode %q", opts.PowerHourMode)
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// MaxPowerHour is the largest power hour a query may select.
func (e *Engine) MaxPowerHour() int {
	if e.opts.PowerHourMode == LeadTime {
		return 48
	}
	return 24
}

// PowerHour computes the 1-indexed power hour of a row.
func (e *Engine) PowerHour(forecastTime, valueTime time.Time) int {
	if e.opts.PowerHourMode == LeadTime {
		return int(math.Floor(valueTime.Sub(forecastTime).Hours())) + 1
	}
	return valueTime.In(e.opts.Market).Hour() + 1
}

// Validate checks a query against the engine's options and the dataset.
func (e *Engine) Validate(ds *Dataset, q Query) error {
	if !schema.IsProductionType(q.Production) {
		return fmt.Errorf("unknown production type %q", q.Production)
	}
	if q.PowerHour < 0 || q.PowerHour > e.MaxPowerHour() {
		return fmt.Errorf("power hour must be between 1 and %d", e.MaxPowerHour())
	}
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.EndDate.Before(q.StartDate) {
		return fmt.Errorf("end date must not be before start date")
	}
	if q.Tag != "" && ds.KeyColumn != schema.TagCol {
		return fmt.Errorf("provider %s has no tags", ds.Provider)
	}
	return nil
}

// Run executes a query over a dataset. Rows where either side of the pair is
// null are dropped; the result is sorted by value time.
func (e *Engine) Run(ds *Dataset, q Query) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	if err := e.Validate(ds, q); err != nil {
		return nil, err
	}

	from, to := e.dateBounds(q.StartDate), e.dateBounds(q.EndDate)
	actualCol := schema.ActualCol(q.Production)

	rows := make([]Row, 0)
	for _, r := range ds.Rows {
		if q.Tag != "" && r.Key != q.Tag {
			continue
		}
		if q.Zone != "" && r.Zone != q.Zone {
			continue
		}
		if !e.inRange(r.ValueTime, from, to) {
			continue
		}
		ph := e.PowerHour(r.ForecastTime, r.ValueTime)
		if q.PowerHour != 0 && ph != q.PowerHour {
			continue
		}
		fv, ok := r.Forecast[q.Production]
		if !ok {
			continue
		}
		av, ok := r.Actual[actualCol]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			ValueTime:    r.ValueTime,
			ForecastTime: r.ForecastTime,
			Key:          r.Key,
			Zone:         r.Zone,
			PowerHour:    ph,
			Actual:       av,
			Forecast:     fv,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ValueTime.Before(rows[j].ValueTime)
	})

	return &Result{
		Provider:   ds.Provider,
		KeyColumn:  ds.KeyColumn,
		Production: q.Production,
		Rows:       rows,
	}, nil
}

// dateBounds maps a calendar date to midnight in the market zone.
func (e *Engine) dateBounds(d time.Time) time.Time {
	if d.IsZero() {
		return d
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, e.opts.Market)
}

func (e *Engine) inRange(vt, from, to time.Time) bool {
	if !from.IsZero() && vt.Before(from) {
		return false
	}
	if to.IsZero() {
		return true
	}
	if e.opts.Closed == ClosedLeft {
		return vt.Before(to)
	}
	return !vt.After(to)
}
