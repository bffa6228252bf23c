package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's prometheus collectors. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	pipelineRuns   *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	rowsWritten    *prometheus.CounterVec
	skippedLines   *prometheus.CounterVec

	compareQueries *prometheus.CounterVec
	datasetRows    *prometheus.GaugeVec
}

// NewRecorder creates a recorder on a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_http_requests_total",
			Help: "Total HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecast_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_pipeline_runs_total",
			Help: "Total pipeline runs by status.",
		}, []string{"status"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecast_pipeline_source_duration_seconds",
			Help:    "Duration of computing one source's canonical table.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "status"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_pipeline_rows_written_total",
			Help: "Total canonical rows written by source.",
		}, []string{"source"}),
		skippedLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_pipeline_skipped_lines_total",
			Help: "Total malformed input lines skipped by source.",
		}, []string{"source"}),
		compareQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_compare_queries_total",
			Help: "Total comparison queries by provider and production type.",
		}, []string{"provider", "production"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "forecast_dataset_rows",
			Help: "Joined rows currently served per provider.",
		}, []string{"provider"}),
	}

	registry.MustRegister(r.httpRequests)
	registry.MustRegister(r.httpDuration)
	registry.MustRegister(r.pipelineRuns)
	registry.MustRegister(r.sourceDuration)
	registry.MustRegister(r.rowsWritten)
	registry.MustRegister(r.skippedLines)
	registry.MustRegister(r.compareQueries)
	registry.MustRegister(r.datasetRows)

	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveRequest(method, route string, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Recorder) PipelineRun(status string) {
	if r == nil {
		return
	}
	r.pipelineRuns.WithLabelValues(status).Inc()
}

func (r *Recorder) SourceComputed(source, status string, d time.Duration, rows int) {
	if r == nil {
		return
	}
	r.sourceDuration.WithLabelValues(source, status).Observe(d.Seconds())
	if rows > 0 {
		r.rowsWritten.WithLabelValues(source).Add(float64(rows))
	}
}

func (r *Recorder) SkippedLines(source string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.skippedLines.WithLabelValues(source).Add(float64(n))
}

func (r *Recorder) CompareQuery(provider, production string) {
	if r == nil {
		return
	}
	r.compareQueries.WithLabelValues(provider, production).Inc()
}

// DatasetRows sets the served row count of every provider. Providers no
// longer present are reset.
func (r *Recorder) DatasetRows(rows map[string]int) {
	if r == nil {
		return
	}
	r.datasetRows.Reset()
	for p, n := range rows {
		r.datasetRows.WithLabelValues(p).Set(float64(n))
	}
}
