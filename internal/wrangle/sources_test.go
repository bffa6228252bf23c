package wrangle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"forecast-compare/internal/model"
	"forecast-compare/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestComputeEnfor(t *testing.T) {
	cph := schema.MarketLocation()
	ft := time.Date(2024, 4, 1, 11, 0, 0, 0, cph)
	vt := time.Date(2024, 4, 2, 10, 0, 0, 0, cph)
	stale := time.Date(2024, 4, 1, 5, 0, 0, 0, cph)

	raw := []model.EnforRecord{
		{ForecastTime: ft, ValueTime: vt, AssetKey: "dk1_land", ForecastType: "wind", CorPower: 800},
		{ForecastTime: ft, ValueTime: vt, AssetKey: "dk1_sea", ForecastType: "wind", CorPower: 300},
		{ForecastTime: ft, ValueTime: vt, AssetKey: "dk1", ForecastType: "solar", CorPower: 120},
		{ForecastTime: ft, ValueTime: vt.Add(time.Hour), AssetKey: "dk1_land", ForecastType: "wind", CorPower: 700},
		{ForecastTime: stale, ValueTime: vt, AssetKey: "dk1_land", ForecastType: "wind", CorPower: 1},
	}

	out, err := ComputeEnfor(raw, EnforRule(cph))
	require.NoError(t, err)

	assert.Equal(t, schema.BiddingZoneCol, out.KeyColumn)
	assert.Equal(t, []string{"wind_onshore", "wind_offshore", "solar", "wind"}, out.Columns)
	require.Len(t, out.Rows, 2)

	first := out.Rows[0]
	assert.True(t, first.ValueTime.Equal(vt))
	assert.Equal(t, "dk1", first.Key)
	assert.Equal(t, map[string]float64{"wind_onshore": 800, "wind_offshore": 300, "solar": 120, "wind": 1100}, first.Values)

	second := out.Rows[1]
	assert.Equal(t, map[string]float64{"wind_onshore": 700, "wind": 700}, second.Values)
}

func TestComputeEnforRenamesSerializedIdentifiers(t *testing.T) {
	cph := schema.MarketLocation()
	ft := time.Date(2024, 4, 1, 11, 0, 0, 0, cph)
	raw := []model.EnforRecord{
		{ForecastTime: ft, ValueTime: ft.Add(14 * time.Hour), AssetKey: "dk1", ForecastType: `{"wind","sea"}`, CorPower: 5},
	}
	out, err := ComputeEnfor(raw, EnforRule(cph))
	require.NoError(t, err)
	assert.Contains(t, out.Columns, "wind_sea")
	assert.Equal(t, 5.0, out.Rows[0].Values["wind"])
}

func TestComputeActuals(t *testing.T) {
	cph := schema.MarketLocation()
	h0 := time.Date(2024, 4, 2, 0, 0, 0, 0, cph)
	h1 := h0.Add(time.Hour)
	rev1 := time.Date(2024, 4, 2, 6, 0, 0, 0, time.UTC)
	rev2 := rev1.Add(24 * time.Hour)

	raw := []model.RawActual{
		{DeliveryStart: h1, BiddingZone: "DK1", UpdatedAt: rev1, WindOnshore: ptr(10), WindOffshore: ptr(5), Solar: ptr(0), Load: ptr(2000)},
		{DeliveryStart: h0, BiddingZone: "DK1", UpdatedAt: rev1, WindOnshore: ptr(1), WindOffshore: ptr(1), Load: ptr(1900)},
		{DeliveryStart: h0, BiddingZone: "DK1", UpdatedAt: rev2, WindOnshore: ptr(12), WindOffshore: ptr(6), Load: ptr(1950)},
	}

	out := ComputeActuals(raw)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, schema.BiddingZoneCol, out.KeyColumn)
	for _, c := range out.Columns {
		assert.True(t, strings.HasSuffix(c, "_actual"), c)
	}
	assert.ElementsMatch(t, []string{"solar_actual", "wind_onshore_actual", "wind_offshore_actual", "load_actual", "wind_actual"}, out.Columns)

	first := out.Rows[0]
	assert.True(t, first.ValueTime.Equal(h0))
	assert.Equal(t, "dk1", first.Key)
	assert.True(t, first.ForecastTime.IsZero())
	assert.Equal(t, 18.0, first.Values["wind_actual"])
	assert.Equal(t, 1950.0, first.Values["load_actual"])

	second := out.Rows[1]
	assert.Equal(t, 15.0, second.Values["wind_actual"])
	assert.Equal(t, 0.0, second.Values["solar_actual"])
}

func TestExtractLatestTieKeepsLaterRow(t *testing.T) {
	h0 := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	rev := h0.Add(-time.Hour)
	raw := []model.RawActual{
		{DeliveryStart: h0, BiddingZone: "DK1", UpdatedAt: rev, Load: ptr(1)},
		{DeliveryStart: h0, BiddingZone: "DK2", UpdatedAt: rev, Load: ptr(3)},
		{DeliveryStart: h0, BiddingZone: "DK1", UpdatedAt: rev, Load: ptr(2)},
	}
	out := ExtractLatest(raw)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, *out[0].Load)
	assert.Equal(t, "DK2", out[1].BiddingZone)
}

func TestComputeActualsMergesZoneCase(t *testing.T) {
	h0 := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	rev := h0.Add(-time.Hour)
	raw := []model.RawActual{
		{DeliveryStart: h0, BiddingZone: "DK1", UpdatedAt: rev.Add(time.Hour), WindOnshore: ptr(9)},
		{DeliveryStart: h0, BiddingZone: "dk1", UpdatedAt: rev, WindOnshore: ptr(4)},
	}
	require.Len(t, ExtractLatest(raw), 1)

	out := ComputeActuals(raw)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "dk1", out.Rows[0].Key)
	assert.Equal(t, 9.0, out.Rows[0].Values["wind_onshore_actual"])
}

func TestComputeEQAveragesSubHourlyValues(t *testing.T) {
	cph := schema.MarketLocation()
	ft := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	vt := time.Date(2024, 6, 2, 12, 0, 0, 0, cph)

	var raw []model.EQRecord
	for q, v := range []float64{100, 110, 120, 130} {
		raw = append(raw,
			model.EQRecord{ForecastTime: ft, ValueTime: vt.Add(time.Duration(q) * 15 * time.Minute), Tag: "ec00", Commodity: "Wind", Location: "Onshore", Value: v},
			model.EQRecord{ForecastTime: ft, ValueTime: vt.Add(time.Duration(q) * 15 * time.Minute), Tag: "ec00", Commodity: "Wind", Location: "Offshore", Value: v / 2},
		)
	}
	raw = append(raw,
		model.EQRecord{ForecastTime: ft, ValueTime: vt, Tag: "ec00", Commodity: "SOLAR", Location: "", Value: 40},
		model.EQRecord{ForecastTime: ft, ValueTime: vt, Tag: "gfs00", Commodity: "wind", Location: "land", Value: 60},
		model.EQRecord{ForecastTime: ft, ValueTime: vt, Tag: "ec12", Commodity: "Wind", Location: "Land", Value: 70},
		model.EQRecord{ForecastTime: ft, ValueTime: vt, Tag: "gfs00", Commodity: "solar", Location: "", Value: 44},
		model.EQRecord{ForecastTime: ft.Add(time.Hour), ValueTime: vt, Tag: "ec00", Commodity: "solar", Value: 1},
	)

	out, err := ComputeEQ(raw, UTCIssueRule(schema.EQIssueHour, cph))
	require.NoError(t, err)
	assert.Equal(t, schema.TagCol, out.KeyColumn)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, []string{"wind_onshore", "wind_offshore", "solar", "wind"}, out.Columns)

	ec := out.Rows[0]
	assert.Equal(t, "ec00", ec.Key)
	assert.True(t, ec.ValueTime.Equal(vt))
	assert.Equal(t, 115.0, ec.Values["wind_onshore"])
	assert.Equal(t, 57.5, ec.Values["wind_offshore"])
	assert.Equal(t, 172.5, ec.Values["wind"])
	assert.Equal(t, 40.0, ec.Values["solar"])

	ec12 := out.Rows[1]
	assert.Equal(t, "ec12", ec12.Key)
	assert.Equal(t, map[string]float64{"wind_onshore": 70, "wind": 70}, ec12.Values)

	gfs := out.Rows[2]
	assert.Equal(t, "gfs00", gfs.Key)
	assert.Equal(t, map[string]float64{"wind_onshore": 60, "solar": 44, "wind": 60}, gfs.Values)
}

const refinitivSample = `Exported series
Id|ForecastDate|ValueDate|Value
117637622|01.06.2024 06:00:00|02.06.2024 10:00:00|812.346
117637902|01.06.2024 06:00:00|02.06.2024 10:00:00|401.111
106330089|01.06.2024 06:00:00|02.06.2024 10:00:00|55.5
999999999|01.06.2024 06:00:00|02.06.2024 10:00:00|1
117637622|01.06.2024 12:00:00|02.06.2024 10:00:00|700
117637622|not a date|02.06.2024 10:00:00|700
117637622|01.06.2024 06:00:00|02.06.2024 11:00:00|n/a
`

var testSeries = []model.Series{
	{ID: "106330089", Production: "solar", BiddingZone: "dk1"},
	{ID: "117637622", Production: "wind_onshore", BiddingZone: "dk1"},
	{ID: "117637902", Production: "wind_offshore", BiddingZone: "dk1"},
}

func TestParseRefinitivCSV(t *testing.T) {
	recs, skipped, err := ParseRefinitivCSV(strings.NewReader(refinitivSample))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, recs, 5)
	assert.Equal(t, "117637622", recs[0].SeriesID)
	assert.True(t, recs[0].ForecastTime.Equal(time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)))
	assert.True(t, recs[0].ValueTime.Equal(time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 812.346, recs[0].Value, 1e-3)
}

func TestParseRefinitivCSVMissingColumn(t *testing.T) {
	_, _, err := ParseRefinitivCSV(strings.NewReader("banner\nId|Value\n1|2\n"))
	assert.Error(t, err)
}

func TestReadAndComputeRefinitiv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export.CSV"), []byte(refinitivSample), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	recs, skipped, err := ReadRefinitiv(dir, testSeries)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, recs, 4)

	cph := schema.MarketLocation()
	out, err := ComputeRefinitiv(recs, UTCIssueRule(schema.RefinitivIssueHour, cph), cph)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)

	row := out.Rows[0]
	assert.Equal(t, cph, row.ValueTime.Location())
	assert.Equal(t, 12, row.ValueTime.Hour())
	assert.Equal(t, 812.35, row.Values["wind_onshore"])
	assert.Equal(t, 401.11, row.Values["wind_offshore"])
	assert.Equal(t, 1213.46, row.Values["wind"])
	assert.Equal(t, 55.5, row.Values["solar"])
}

func TestComputeMeteologica(t *testing.T) {
	cph := schema.MarketLocation()
	ft := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	vt := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	raw := []model.LongRow{
		{ForecastTime: ft, ValueTime: vt, Key: "dk1", Production: "wind_onshore", Value: 3},
		{ForecastTime: ft, ValueTime: vt, Key: "dk1", Production: "wind_offshore", Value: 4},
	}
	out, err := ComputeMeteologica(raw, cph)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, cph, out.Rows[0].ValueTime.Location())
	assert.Equal(t, 7.0, out.Rows[0].Values["wind"])
}
