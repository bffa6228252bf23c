package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forecast-compare/internal/analysis"
	"forecast-compare/internal/api/models"
	"forecast-compare/internal/compare"
)

// RankHandler handles ranking-related requests
type RankHandler struct {
	store  *compare.Store
	engine *compare.Engine
}

// NewRankHandler creates a new rank handler
func NewRankHandler(store *compare.Store, engine *compare.Engine) *RankHandler {
	return &RankHandler{store: store, engine: engine}
}

// RankProviders handles GET /api/v1/rank
func (h *RankHandler) RankProviders(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	q, err := buildQuery("", "", req.Zone, req.StartDate, req.EndDate, req.Type, req.PowerHour)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}

	ranked, err := analysis.RankProviders(h.engine, h.store.All(), q)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	c.JSON(http.StatusOK, models.RankResponse{
		Production: q.Production,
		Rankings:   ranked,
	})
}
