package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"forecast-compare/internal/analysis"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/config"
	"forecast-compare/internal/pipeline"
)

var rootFlags struct {
	config string
	env    string
}

var queryFlags struct {
	provider  string
	tag       string
	zone      string
	start     string
	end       string
	typ       string
	powerHour int
	out       string
}

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Wrangle provider forecasts and compare them with actual production",
	Long: `Wrangle raw provider snapshots into canonical day-ahead tables and compare
them with actual production.

  cli wrangle --config config.yaml
  cli compare --provider enfor --type wind --power-hour 12 --out results/enfor_wind.csv
  cli rank --type solar --start 2024-06-01 --end 2024-07-01`,
	SilenceUsage: true,
}

var wrangleCmd = &cobra.Command{
	Use:   "wrangle",
	Short: "Recompute canonical snapshots from raw ones",
	RunE:  runWrangle,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Print accuracy for one provider and optionally write the rows as CSV",
	RunE:  runCompare,
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank providers by RMSE for one production type",
	RunE:  runRank,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.config, "config", "c", "", "Path to YAML config (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.env, "env-file", ".env", "Path to .env file")

	for _, cmd := range []*cobra.Command{compareCmd, rankCmd} {
		cmd.Flags().StringVar(&queryFlags.zone, "zone", "", "Bidding zone of the actuals, e.g. dk1")
		cmd.Flags().StringVar(&queryFlags.start, "start", "", "Start date YYYY-MM-DD (market zone)")
		cmd.Flags().StringVar(&queryFlags.end, "end", "", "End date YYYY-MM-DD (market zone)")
		cmd.Flags().StringVarP(&queryFlags.typ, "type", "t", "wind", "Production type")
		cmd.Flags().IntVarP(&queryFlags.powerHour, "power-hour", "p", 0, "Power hour, 0 = all")
	}
	compareCmd.Flags().StringVar(&queryFlags.provider, "provider", "", "Provider name")
	compareCmd.Flags().StringVar(&queryFlags.tag, "tag", "", "Provider tag (tag-keyed providers only)")
	compareCmd.Flags().StringVarP(&queryFlags.out, "out", "o", "", "Output CSV path")
	_ = compareCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(wrangleCmd, compareCmd, rankCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(rootFlags.env); err != nil {
		return nil, err
	}
	return config.Load(rootFlags.config)
}

func runWrangle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runner, err := pipeline.New(cfg, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := runner.Run(cmd.Context())
	if res == nil {
		return err
	}
	fmt.Printf("actuals: %d rows -> %s\n", len(res.Actuals.Rows), cfg.Resolve(cfg.Actuals.Output))
	for _, t := range res.Tables {
		fmt.Printf("%-12s %6d rows %2d columns -> %s\n", t.Provider.Name, len(t.Table.Rows), len(t.Table.Columns), cfg.Resolve(t.Provider.Output))
	}
	fmt.Printf("done in %v\n", time.Since(start).Round(time.Millisecond))
	return err
}

// loadDatasets reads the canonical snapshots and joins them with actuals.
// Providers whose snapshot is missing are reported and skipped.
func loadDatasets(cfg *config.Config) ([]*compare.Dataset, error) {
	runner, err := pipeline.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	res, err := runner.Load()
	if res == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return res.Datasets(), nil
}

func buildQuery() (compare.Query, error) {
	q := compare.Query{
		Provider:   queryFlags.provider,
		Tag:        queryFlags.tag,
		Zone:       queryFlags.zone,
		Production: queryFlags.typ,
		PowerHour:  queryFlags.powerHour,
	}
	var err error
	if queryFlags.start != "" {
		if q.StartDate, err = time.Parse("2006-01-02", queryFlags.start); err != nil {
			return q, fmt.Errorf("--start: %w", err)
		}
	}
	if queryFlags.end != "" {
		if q.EndDate, err = time.Parse("2006-01-02", queryFlags.end); err != nil {
			return q, fmt.Errorf("--end: %w", err)
		}
	}
	return q, nil
}

func newEngine(cfg *config.Config) (*compare.Engine, error) {
	return compare.New(compare.Options{
		Market:        cfg.Market(),
		Closed:        cfg.Compare.DateRangeClosed,
		PowerHourMode: cfg.Compare.PowerHourMode,
	})
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q, err := buildQuery()
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	datasets, err := loadDatasets(cfg)
	if err != nil {
		return err
	}

	var ds *compare.Dataset
	for _, d := range datasets {
		if d.Provider == q.Provider {
			ds = d
		}
	}
	if ds == nil {
		return fmt.Errorf("provider %q is not loaded", q.Provider)
	}

	res, err := engine.Run(ds, q)
	if err != nil {
		return err
	}
	acc := analysis.ComputeAccuracy(res.Rows)
	fmt.Printf("%s %s: n=%d mae=%.2f rmse=%.2f bias=%.2f r=%.3f\n",
		res.Provider, res.Production, acc.Count, acc.MAE, acc.RMSE, acc.Bias, acc.Correlation)

	if queryFlags.out == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(queryFlags.out), 0o755); err != nil {
		return err
	}
	if err := compare.WriteResultCSV(queryFlags.out, res); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), queryFlags.out)
	return nil
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q, err := buildQuery()
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	datasets, err := loadDatasets(cfg)
	if err != nil {
		return err
	}

	ranked, err := analysis.RankProviders(engine, datasets, q)
	if err != nil {
		return err
	}
	fmt.Printf("%-4s %-14s %-8s %-10s %-10s %-10s %-8s\n", "rank", "provider", "count", "mae", "rmse", "bias", "r")
	for i, r := range ranked {
		fmt.Printf("%-4d %-14s %-8d %-10.2f %-10.2f %-10.2f %-8.3f\n",
			i+1, r.Provider, r.Count, r.MAE, r.RMSE, r.Bias, r.Correlation)
	}
	return nil
}
