package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gin-gonic/gin"

	"forecast-compare/internal/api"
	"forecast-compare/internal/api/handlers"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/config"
	"forecast-compare/internal/metrics"
	"forecast-compare/internal/pipeline"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "Path to YAML config (defaults built in)")
		envFile = flag.String("env-file", ".env", "Path to .env file")
		rebuild = flag.Bool("wrangle", false, "Recompute canonical snapshots before serving")
	)
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	wd, err := os.Getwd()
	if err == nil {
		log.Printf("Working directory: %s", wd)
	}
	log.Printf("Data directory: %s", cfg.DataDir)

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rec := metrics.NewRecorder()
	runner, err := pipeline.New(cfg, rec)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	engine, err := compare.New(compare.Options{
		Market:        cfg.Market(),
		Closed:        cfg.Compare.DateRangeClosed,
		PowerHourMode: cfg.Compare.PowerHourMode,
	})
	if err != nil {
		log.Fatalf("Failed to create compare engine: %v", err)
	}
	store := compare.NewStore()

	var res *pipeline.Result
	if *rebuild {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		res, err = runner.Run(ctx)
		stop()
	} else {
		res, err = runner.Load()
	}
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	if res != nil {
		handlers.Publish(store, rec, res)
		log.Printf("Serving %d providers", len(store.Providers()))
	} else {
		log.Printf("No canonical snapshots loaded; POST /api/v1/pipeline/run to build them")
	}

	router := api.NewRouter(api.Deps{
		Config:  cfg,
		Store:   store,
		Engine:  engine,
		Runner:  runner,
		Metrics: rec,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
