package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"forecast-compare/internal/analysis"
	"forecast-compare/internal/api/models"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/metrics"
)

// CompareHandler handles comparison requests
type CompareHandler struct {
	store   *compare.Store
	engine  *compare.Engine
	metrics *metrics.Recorder
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(store *compare.Store, engine *compare.Engine, rec *metrics.Recorder) *CompareHandler {
	return &CompareHandler{store: store, engine: engine, metrics: rec}
}

// Compare handles GET /api/v1/compare
func (h *CompareHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	q, err := buildQuery(req.Provider, req.Tag, req.Zone, req.StartDate, req.EndDate, req.Type, req.PowerHour)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}

	ds, ok := h.store.Get(req.Provider)
	if !ok {
		abortWithError(c, http.StatusNotFound, "PROVIDER_NOT_FOUND", fmt.Sprintf("provider %q is not loaded", req.Provider))
		return
	}

	res, err := h.engine.Run(ds, q)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	h.metrics.CompareQuery(res.Provider, res.Production)

	resp := models.CompareResponse{
		Provider:   res.Provider,
		Production: res.Production,
		Count:      len(res.Rows),
		Scatter:    compare.BuildScatter(res.Rows),
		Accuracy:   analysis.ComputeAccuracy(res.Rows),
	}
	if req.IncludeRows {
		resp.Rows = models.ToComparisonRows(res.Rows)
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/v1/compare/csv
func (h *CompareHandler) Export(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	q, err := buildQuery(req.Provider, req.Tag, req.Zone, req.StartDate, req.EndDate, req.Type, req.PowerHour)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}
	ds, ok := h.store.Get(req.Provider)
	if !ok {
		abortWithError(c, http.StatusNotFound, "PROVIDER_NOT_FOUND", fmt.Sprintf("provider %q is not loaded", req.Provider))
		return
	}
	res, err := h.engine.Run(ds, q)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	h.metrics.CompareQuery(res.Provider, res.Production)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.csv", res.Provider, res.Production))
	c.Status(http.StatusOK)
	if err := compare.EncodeResultCSV(c.Writer, res); err != nil {
		_ = c.Error(err)
	}
}
