package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"forecast-compare/internal/config"
	"forecast-compare/internal/data"
	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

// chunk bounds the window of a single vendor request.
const chunk = 31 * 24 * time.Hour

func main() {
	var (
		cfgPath    = flag.String("config", "", "Path to YAML config (defaults built in)")
		envFile    = flag.String("env-file", ".env", "Path to .env file")
		what       = flag.String("what", "all", "What to fetch: enfor, actuals or all")
		provider   = flag.String("provider", "enfor", "Provider whose raw snapshot receives the fundamentals")
		seriesFile = flag.String("series-out", "", "Also write the default Refinitiv series catalog to this path")
	)
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Vendor.APIKey == "" {
		log.Fatal("FORECAST_VENDOR_API_KEY environment variable (or vendor.api_key) is required")
	}

	from, to, err := cfg.FetchRange()
	if err != nil {
		log.Fatalf("Invalid fetch window: %v", err)
	}

	store, err := data.NewSnapshotStore(cfg.DataDir, cfg.Compression)
	if err != nil {
		log.Fatalf("Failed to open data dir: %v", err)
	}

	client := data.NewVendorClient(cfg.Vendor.APIKey, cfg.Vendor.BaseURL)
	client.Cache = data.NewResponseCache(cfg.Vendor.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Fetching %s from %s to %s\n", *what, from.Format("2006-01-02"), to.Format("2006-01-02"))

	if *what == "enfor" || *what == "all" {
		p, ok := cfg.Provider(*provider)
		if !ok || p.Kind != schema.KindEnfor {
			log.Fatalf("Provider %q is not an enfor provider", *provider)
		}
		records, err := fetchFundamentals(ctx, client, cfg, from, to)
		if err != nil {
			log.Fatalf("Failed to fetch fundamentals: %v", err)
		}
		if err := store.WriteEnfor(p.Raw, records); err != nil {
			log.Fatalf("Failed to save fundamentals: %v", err)
		}
		fmt.Printf("Saved %d fundamentals rows to %s\n", len(records), store.Path(p.Raw))
	}

	if *what == "actuals" || *what == "all" {
		records, err := fetchActuals(ctx, client, cfg, from, to)
		if err != nil {
			log.Fatalf("Failed to fetch actuals: %v", err)
		}
		if err := store.WriteActuals(cfg.Actuals.Raw, records); err != nil {
			log.Fatalf("Failed to save actuals: %v", err)
		}
		fmt.Printf("Saved %d actuals rows to %s\n", len(records), store.Path(cfg.Actuals.Raw))
	}

	if *seriesFile != "" {
		catalog := &data.SeriesCatalog{
			Provider:  string(schema.KindRefinitiv),
			UpdatedAt: time.Now().Format(time.RFC3339),
			Series:    data.DefaultRefinitivSeries(),
		}
		if err := data.SaveSeriesCatalog(catalog, *seriesFile); err != nil {
			log.Fatalf("Failed to save series: %v", err)
		}
		fmt.Printf("Saved %d series to %s\n", len(catalog.Series), *seriesFile)
	}
}

// windows splits [from, to) into request-sized pieces.
func windows(from, to time.Time) [][2]time.Time {
	var out [][2]time.Time
	for start := from; start.Before(to); start = start.Add(chunk) {
		end := start.Add(chunk)
		if end.After(to) {
			end = to
		}
		out = append(out, [2]time.Time{start, end})
	}
	return out
}

func fetchFundamentals(ctx context.Context, client *data.VendorClient, cfg *config.Config, from, to time.Time) ([]model.EnforRecord, error) {
	var all []model.EnforRecord
	for _, w := range windows(from, to) {
		recs, err := client.FetchFundamentals(ctx, data.FundamentalsParams{
			From:          w[0],
			To:            w[1],
			AssetKeys:     cfg.Fetch.AssetKeys,
			ForecastHours: cfg.Fetch.ForecastHours,
		})
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w[0].Format("2006-01-02"), err)
		}
		all = append(all, recs...)
	}
	return all, nil
}

func fetchActuals(ctx context.Context, client *data.VendorClient, cfg *config.Config, from, to time.Time) ([]model.RawActual, error) {
	var all []model.RawActual
	for _, w := range windows(from, to) {
		recs, err := client.FetchActualProduction(ctx, data.ActualsParams{
			From:  w[0],
			To:    w[1],
			Zones: cfg.Fetch.Zones,
		})
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w[0].Format("2006-01-02"), err)
		}
		all = append(all, recs...)
	}
	return all, nil
}
