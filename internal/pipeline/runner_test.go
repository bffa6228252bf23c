package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-compare/internal/compare"
	"forecast-compare/internal/config"
	"forecast-compare/internal/data"
	"forecast-compare/internal/metrics"
	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"
)

func ptr(v float64) *float64 { return &v }

// seed writes one day of raw Enfor forecasts and DK1 actuals, plus one
// Refinitiv export, into a fresh data directory.
func seed(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Providers = []config.ProviderConfig{
		{Name: "enfor", Kind: schema.KindEnfor, Raw: "raw_enfor.parquet", Output: "enfor.parquet"},
		{Name: "refinitiv", Kind: schema.KindRefinitiv, Raw: "refinitiv/raw", Output: "refinitiv.parquet"},
	}
	require.NoError(t, cfg.Validate())

	store, err := data.NewSnapshotStore(cfg.DataDir, cfg.Compression)
	require.NoError(t, err)

	market := schema.MarketLocation()
	ft := time.Date(2024, 3, 1, 11, 0, 0, 0, market)
	late := time.Date(2024, 3, 1, 12, 0, 0, 0, market)
	var enfor []model.EnforRecord
	var actuals []model.RawActual
	for h := 0; h < 24; h++ {
		vt := time.Date(2024, 3, 2, h, 0, 0, 0, market)
		enfor = append(enfor,
			model.EnforRecord{ForecastTime: ft, ValueTime: vt, AssetKey: "dk1_land", ForecastType: "wind", CorPower: 100},
			model.EnforRecord{ForecastTime: ft, ValueTime: vt, AssetKey: "dk1_sea", ForecastType: "wind", CorPower: 50},
			model.EnforRecord{ForecastTime: late, ValueTime: vt, AssetKey: "dk1_land", ForecastType: "wind", CorPower: 999},
		)
		actuals = append(actuals, model.RawActual{
			DeliveryStart: vt,
			BiddingZone:   "DK1",
			UpdatedAt:     vt.Add(time.Hour),
			WindOnshore:   ptr(90),
			WindOffshore:  ptr(40),
		})
	}
	require.NoError(t, store.WriteEnfor("raw_enfor.parquet", enfor))
	require.NoError(t, store.WriteActuals("raw_actuals.parquet", actuals))

	csvDir := filepath.Join(cfg.DataDir, "refinitiv", "raw")
	require.NoError(t, os.MkdirAll(csvDir, 0o755))
	export := "Exported series\nId|ForecastDate|ValueDate|Value\n" +
		"117637622|01.03.2024 06:00:00|02.03.2024 09:00:00|10\n" +
		"117637622|broken line\n"
	require.NoError(t, os.WriteFile(filepath.Join(csvDir, "export.CSV"), []byte(export), 0o644))
	return cfg
}

func TestRunWritesCanonicalSnapshots(t *testing.T) {
	cfg := seed(t)
	r, err := New(cfg, metrics.NewRecorder())
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, 2)
	assert.Len(t, res.Actuals.Rows, 24)

	enfor := res.Tables[0].Table
	assert.Equal(t, "enfor", res.Tables[0].Provider.Name)
	require.Len(t, enfor.Rows, 24, "only the 11:00 run is day-ahead")
	assert.Equal(t, 150.0, enfor.Rows[0].Values["wind"])

	ref := res.Tables[1].Table
	require.Len(t, ref.Rows, 1)
	assert.Equal(t, 10.0, ref.Rows[0].Values["wind"])

	for _, name := range []string{"actuals.parquet", "enfor.parquet", "refinitiv.parquet"} {
		assert.True(t, r.Store().Exists(name), name)
	}
}

func TestRunAndLoadJoin(t *testing.T) {
	cfg := seed(t)
	r, err := New(cfg, nil)
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	require.NoError(t, err)

	loaded, err := r.Load()
	require.NoError(t, err)
	datasets := loaded.Datasets()
	require.Len(t, datasets, 2)
	assert.Len(t, datasets[0].Rows, 24)

	e, err := compare.New(compare.Options{Market: cfg.Market()})
	require.NoError(t, err)
	out, err := e.Run(datasets[0], compare.Query{Production: "wind", PowerHour: 1})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, 130.0, out.Rows[0].Actual)
	assert.Equal(t, 150.0, out.Rows[0].Forecast)
	assert.Equal(t, 0, out.Rows[0].ValueTime.In(cfg.Market()).Hour())

	ref, err := e.Run(datasets[1], compare.Query{Production: "wind_onshore"})
	require.NoError(t, err)
	require.Len(t, ref.Rows, 1)
	assert.Equal(t, 90.0, ref.Rows[0].Actual)
}

func TestRunContinuesPastFailingProvider(t *testing.T) {
	cfg := seed(t)
	cfg.Providers = append(cfg.Providers, config.ProviderConfig{
		Name: "eq", Kind: schema.KindEQ, Raw: "eq/raw", Output: "eq.parquet",
	})
	r, err := New(cfg, nil)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eq")
	require.NotNil(t, res)
	assert.Len(t, res.Tables, 2)

	loaded, err := r.Load()
	assert.Error(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Tables, 2)
}

func TestRunRequiresActuals(t *testing.T) {
	cfg := seed(t)
	cfg.Actuals.Raw = "missing.parquet"
	r, err := New(cfg, nil)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := seed(t)
	r, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Tables)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Compression = "lz5"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
