package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/go-multierror"

	"forecast-compare/internal/compare"
	"forecast-compare/internal/config"
	"forecast-compare/internal/data"
	"forecast-compare/internal/metrics"
	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
	"forecast-compare/internal/wrangle"
)

// Table is one provider's canonical forecast table.
type Table struct {
	Provider config.ProviderConfig
	Table    *model.WideTable
}

// Result holds the canonical tables of one run or load.
type Result struct {
	Actuals *model.WideTable
	Tables  []Table
}

// Datasets joins every provider table with the actuals.
func (r *Result) Datasets() []*compare.Dataset {
	out := make([]*compare.Dataset, 0, len(r.Tables))
	for _, t := range r.Tables {
		out = append(out, compare.Join(t.Provider.Name, t.Table, r.Actuals))
	}
	return out
}

// Runner recomputes canonical snapshots from raw ones.
type Runner struct {
	cfg     *config.Config
	store   *data.SnapshotStore
	market  *time.Location
	metrics *metrics.Recorder
}

func New(cfg *config.Config, rec *metrics.Recorder) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	store, err := data.NewSnapshotStore(cfg.DataDir, cfg.Compression)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, store: store, market: cfg.Market(), metrics: rec}, nil
}

// Store returns the snapshot store the runner reads and writes.
func (r *Runner) Store() *data.SnapshotStore { return r.store }

// Run computes actuals and every configured provider, writing each canonical
// table to its output snapshot. Actuals are required; a failing provider is
// reported in the returned error while the others still run, so a non-nil
// Result may come with a non-nil error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log.Printf("[Pipeline] Run started: %d providers, data_dir=%s", len(r.cfg.Providers), r.cfg.DataDir)

	actuals, err := r.computeActuals()
	if err != nil {
		r.metrics.PipelineRun("error")
		return nil, fmt.Errorf("actuals: %w", err)
	}

	res := &Result{Actuals: actuals}
	var errs *multierror.Error
	for _, p := range r.cfg.Providers {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		t, err := r.computeProvider(p)
		if err != nil {
			log.Printf("[Pipeline] Provider %s failed: %v", p.Name, err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		res.Tables = append(res.Tables, Table{Provider: p, Table: t})
	}

	status := "success"
	if errs.ErrorOrNil() != nil {
		status = "partial"
	}
	r.metrics.PipelineRun(status)
	log.Printf("[Pipeline] Run finished: %d/%d providers (duration: %v)", len(res.Tables), len(r.cfg.Providers), time.Since(start))
	return res, errs.ErrorOrNil()
}

// Load reads previously written canonical snapshots without recomputing.
func (r *Runner) Load() (*Result, error) {
	actuals, err := r.store.ReadWide(r.cfg.Actuals.Output, r.market)
	if err != nil {
		return nil, fmt.Errorf("actuals: %w", err)
	}
	res := &Result{Actuals: actuals}
	var errs *multierror.Error
	for _, p := range r.cfg.Providers {
		t, err := r.store.ReadWide(p.Output, r.market)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		res.Tables = append(res.Tables, Table{Provider: p, Table: t})
	}
	log.Printf("[Pipeline] Loaded %d/%d provider snapshots", len(res.Tables), len(r.cfg.Providers))
	return res, errs.ErrorOrNil()
}

func (r *Runner) computeActuals() (*model.WideTable, error) {
	start := time.Now()
	raw, err := r.store.ReadActuals(r.cfg.Actuals.Raw)
	if err != nil {
		r.metrics.SourceComputed("actuals", "error", time.Since(start), 0)
		return nil, err
	}
	t := wrangle.ComputeActuals(raw)
	if err := r.store.WriteWide(r.cfg.Actuals.Output, t); err != nil {
		r.metrics.SourceComputed("actuals", "error", time.Since(start), 0)
		return nil, err
	}
	r.metrics.SourceComputed("actuals", "success", time.Since(start), len(t.Rows))
	return t, nil
}

func (r *Runner) computeProvider(p config.ProviderConfig) (*model.WideTable, error) {
	start := time.Now()
	t, err := r.compute(p)
	if err == nil {
		err = r.store.WriteWide(p.Output, t)
	}
	if err != nil {
		r.metrics.SourceComputed(p.Name, "error", time.Since(start), 0)
		return nil, err
	}
	r.metrics.SourceComputed(p.Name, "success", time.Since(start), len(t.Rows))
	log.Printf("[Pipeline] Provider %s: %d rows x %d columns (duration: %v)", p.Name, len(t.Rows), len(t.Columns), time.Since(start))
	return t, nil
}

func (r *Runner) compute(p config.ProviderConfig) (*model.WideTable, error) {
	switch p.Kind {
	case schema.KindEnfor:
		raw, err := r.store.ReadEnfor(p.Raw)
		if err != nil {
			return nil, err
		}
		return wrangle.ComputeEnfor(raw, wrangle.EnforRule(r.market))
	case schema.KindEQ:
		raw, err := r.store.ReadEQ(p.Raw)
		if err != nil {
			return nil, err
		}
		return wrangle.ComputeEQ(raw, wrangle.UTCIssueRule(schema.EQIssueHour, r.market))
	case schema.KindRefinitiv:
		series, err := data.SeriesOrDefault(r.cfg.Resolve(p.SeriesFile))
		if err != nil {
			return nil, err
		}
		raw, skipped, err := wrangle.ReadRefinitiv(r.store.Path(p.Raw), series)
		if err != nil {
			return nil, err
		}
		r.metrics.SkippedLines(p.Name, skipped)
		return wrangle.ComputeRefinitiv(raw, wrangle.UTCIssueRule(schema.RefinitivIssueHour, r.market), r.market)
	case schema.KindMeteologica:
		raw, err := r.store.ReadLong(p.Raw)
		if err != nil {
			return nil, err
		}
		return wrangle.ComputeMeteologica(raw, r.market)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", p.Kind)
	}
}
