package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest("GET", "/api/v1/compare", "200", 10*time.Millisecond)
	r.ObserveRequest("GET", "/api/v1/compare", "200", 20*time.Millisecond)
	r.PipelineRun("success")
	r.SourceComputed("enfor", "success", time.Second, 48)
	r.SourceComputed("eq", "error", time.Second, 0)
	r.SkippedLines("refinitiv", 3)
	r.SkippedLines("refinitiv", 0)
	r.CompareQuery("enfor", "wind")
	r.DatasetRows(map[string]int{"enfor": 96, "eq": 10})
	r.DatasetRows(map[string]int{"enfor": 90})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "/api/v1/compare", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pipelineRuns.WithLabelValues("success")))
	assert.Equal(t, 48.0, testutil.ToFloat64(r.rowsWritten.WithLabelValues("enfor")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.skippedLines.WithLabelValues("refinitiv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.compareQueries.WithLabelValues("enfor", "wind")))
	assert.Equal(t, 90.0, testutil.ToFloat64(r.datasetRows.WithLabelValues("enfor")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.datasetRows))
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder()
	r.PipelineRun("success")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `forecast_pipeline_runs_total{status="success"} 1`)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRequest("GET", "/", "200", time.Millisecond)
		r.PipelineRun("success")
		r.SourceComputed("enfor", "success", time.Second, 1)
		r.SkippedLines("refinitiv", 1)
		r.CompareQuery("enfor", "wind")
		r.DatasetRows(nil)
	})
	assert.NotNil(t, r.Handler())
}
