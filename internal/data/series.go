package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"forecast-compare/internal/model"
)

// SeriesCatalog lists the vendor series a provider's exports are joined
// against. Only catalogued series reach the canonical table.
type SeriesCatalog struct {
	Provider  string         `json:"provider"`
	UpdatedAt string         `json:"updated_at"` // ISO 8601 timestamp
	Series    []model.Series `json:"series"`
}

// DefaultRefinitivSeries are the median-scenario series for DK1 and DK2.
func DefaultRefinitivSeries() []model.Series {
	return []model.Series{
		{ID: "106330089", Production: "solar", BiddingZone: "dk1"},
		{ID: "106330238", Production: "solar", BiddingZone: "dk2"},
		{ID: "117637622", Production: "wind_onshore", BiddingZone: "dk1"},
		{ID: "117637818", Production: "wind_onshore", BiddingZone: "dk2"},
		{ID: "117637902", Production: "wind_offshore", BiddingZone: "dk1"},
		{ID: "117637668", Production: "wind_offshore", BiddingZone: "dk2"},
	}
}

// LoadSeriesCatalog loads a catalog from a JSON file
func LoadSeriesCatalog(filePath string) (*SeriesCatalog, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read series file: %w", err)
	}

	var catalog SeriesCatalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse series file: %w", err)
	}
	for i, s := range catalog.Series {
		if s.ID == "" || s.Production == "" {
			return nil, fmt.Errorf("series file entry %d: id and production are required", i)
		}
	}

	return &catalog, nil
}

// SaveSeriesCatalog saves a catalog to a JSON file
func SaveSeriesCatalog(catalog *SeriesCatalog, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write series file: %w", err)
	}

	return nil
}

// SeriesOrDefault loads the catalog at filePath, or returns the default
// Refinitiv series when filePath is empty.
func SeriesOrDefault(filePath string) ([]model.Series, error) {
	if filePath == "" {
		return DefaultRefinitivSeries(), nil
	}
	catalog, err := LoadSeriesCatalog(filePath)
	if err != nil {
		return nil, err
	}
	return catalog.Series, nil
}
