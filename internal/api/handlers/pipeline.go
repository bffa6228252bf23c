package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"

	"forecast-compare/internal/api/models"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/metrics"
	"forecast-compare/internal/pipeline"
)

// PipelineHandler recomputes the canonical snapshots and reloads the store.
type PipelineHandler struct {
	runner  *pipeline.Runner
	store   *compare.Store
	metrics *metrics.Recorder

	// one run at a time
	mu sync.Mutex
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(runner *pipeline.Runner, store *compare.Store, rec *metrics.Recorder) *PipelineHandler {
	return &PipelineHandler{runner: runner, store: store, metrics: rec}
}

// Run handles POST /api/v1/pipeline/run
func (h *PipelineHandler) Run(c *gin.Context) {
	if !h.mu.TryLock() {
		abortWithError(c, http.StatusConflict, "PIPELINE_BUSY", "a pipeline run is already in progress")
		return
	}
	defer h.mu.Unlock()

	start := time.Now()
	res, err := h.runner.Run(c.Request.Context())
	if res == nil {
		abortWithError(c, http.StatusInternalServerError, "PIPELINE_FAILED", err.Error())
		return
	}

	Publish(h.store, h.metrics, res)

	resp := models.PipelineRunResponse{
		Status:   "success",
		Duration: time.Since(start).String(),
	}
	for _, t := range res.Tables {
		resp.Providers = append(resp.Providers, t.Provider.Name)
	}
	if err != nil {
		resp.Status = "partial"
		if merr, ok := err.(*multierror.Error); ok {
			for _, e := range merr.Errors {
				resp.Errors = append(resp.Errors, e.Error())
			}
		} else {
			resp.Errors = []string{err.Error()}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Publish joins a pipeline result and swaps it into the store.
func Publish(store *compare.Store, rec *metrics.Recorder, res *pipeline.Result) {
	datasets := res.Datasets()
	rows := make(map[string]int, len(datasets))
	for _, ds := range datasets {
		rows[ds.Provider] = len(ds.Rows)
	}
	store.Replace(datasets)
	rec.DatasetRows(rows)
}
