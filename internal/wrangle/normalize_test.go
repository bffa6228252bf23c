package wrangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "onshore", NormalizeLocation("land"))
	assert.Equal(t, "offshore", NormalizeLocation("sea"))
	assert.Equal(t, "coast", NormalizeLocation("coast"))
	assert.Equal(t, "", NormalizeLocation(""))
	assert.Equal(t, "onshore", NormalizeLocation("Land"))
	assert.Equal(t, "offshore", NormalizeLocation("SEA"))
	assert.Equal(t, "coast", NormalizeLocation("Coast"))
}

func TestMapAssetLocation(t *testing.T) {
	tests := map[string]string{
		`{"wind","onshore"}`:    "wind_onshore",
		`{"solar","dk1"}`:       "solar_dk1",
		`{"wind","sea"} extra`:  "wind_sea",
		"wind_offshore":         "wind_offshore",
		`{"wind"}`:              `{"wind"}`,
		`prefix {"wind","sea"}`: `prefix {"wind","sea"}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapAssetLocation(in), in)
	}
}

func TestSplitAssetKey(t *testing.T) {
	tests := []struct {
		key, zone, location string
	}{
		{"dk1", "dk1", ""},
		{"dk1_land", "dk1", "land"},
		{"dk2_sea", "dk2", "sea"},
		{"se", "se", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		zone, location := SplitAssetKey(tt.key)
		assert.Equal(t, tt.zone, zone, tt.key)
		assert.Equal(t, tt.location, location, tt.key)
	}
}

func TestProductionKey(t *testing.T) {
	assert.Equal(t, "wind_onshore", ProductionKey("Wind", "onshore"))
	assert.Equal(t, "solar", ProductionKey("SOLAR", ""))
	assert.Equal(t, "offshore", ProductionKey("", "offshore"))
}
