package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forecast-compare/internal/api/models"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/config"
	"forecast-compare/internal/schema"
)

// ProvidersHandler serves the selectors of the comparison view.
type ProvidersHandler struct {
	store  *compare.Store
	engine *compare.Engine
	cfg    *config.Config
}

// NewProvidersHandler creates a new providers handler
func NewProvidersHandler(store *compare.Store, engine *compare.Engine, cfg *config.Config) *ProvidersHandler {
	return &ProvidersHandler{store: store, engine: engine, cfg: cfg}
}

// ListProviders handles GET /api/v1/providers
func (h *ProvidersHandler) ListProviders(c *gin.Context) {
	datasets := h.store.All()
	providers := make([]models.ProviderInfo, 0, len(datasets))
	for _, ds := range datasets {
		kind := ""
		if p, ok := h.cfg.Provider(ds.Provider); ok {
			kind = string(p.Kind)
		}
		providers = append(providers, models.ProviderInfo{
			Name:      ds.Provider,
			Kind:      kind,
			KeyColumn: ds.KeyColumn,
			Tags:      ds.Tags(),
			Zones:     ds.Zones(),
			Rows:      len(ds.Rows),
		})
	}

	hours := make([]int, h.engine.MaxPowerHour())
	for i := range hours {
		hours[i] = i + 1
	}

	start, end := h.store.Bounds()
	c.JSON(http.StatusOK, models.ProvidersResponse{
		Providers:       providers,
		ProductionTypes: schema.ProductionTypes,
		PowerHours:      hours,
		Window:          models.TimeWindow{Start: start, End: end},
		LoadedAt:        h.store.LoadedAt(),
	})
}
