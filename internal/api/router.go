package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forecast-compare/internal/api/handlers"
	"forecast-compare/internal/api/middleware"
	"forecast-compare/internal/api/models"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/config"
	"forecast-compare/internal/metrics"
	"forecast-compare/internal/pipeline"
)

// Deps are the collaborators the HTTP API is built from.
type Deps struct {
	Config  *config.Config
	Store   *compare.Store
	Engine  *compare.Engine
	Runner  *pipeline.Runner
	Metrics *metrics.Recorder
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(d.Config.Server.AllowedOrigins))
	router.Use(middleware.Logger(d.Metrics))

	providersHandler := handlers.NewProvidersHandler(d.Store, d.Engine, d.Config)
	compareHandler := handlers.NewCompareHandler(d.Store, d.Engine, d.Metrics)
	rankHandler := handlers.NewRankHandler(d.Store, d.Engine)
	pipelineHandler := handlers.NewPipelineHandler(d.Runner, d.Store, d.Metrics)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"providers": len(d.Store.Providers()),
		})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/providers", providersHandler.ListProviders)
		api.GET("/compare", compareHandler.Compare)
		api.GET("/compare/csv", compareHandler.Export)
		api.GET("/rank", rankHandler.RankProviders)
		api.POST("/pipeline/run", pipelineHandler.Run)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	})

	return router
}
