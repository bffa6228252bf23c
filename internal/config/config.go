package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"forecast-compare/internal/schema"
)

// EnvPrefix prefixes every environment override, e.g. FORECAST_DATA_DIR.
const EnvPrefix = "FORECAST"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Relative snapshot paths resolve against DataDir.
	DataDir     string `yaml:"data_dir"`
	MarketZone  string `yaml:"market_zone"`
	Compression string `yaml:"compression"`

	Actuals   ActualsConfig    `yaml:"actuals"`
	Providers []ProviderConfig `yaml:"providers"`
	Compare   CompareConfig    `yaml:"compare"`
	Server    ServerConfig     `yaml:"server"`
	Vendor    VendorConfig     `yaml:"vendor"`
	Fetch     FetchConfig      `yaml:"fetch"`
}

type ActualsConfig struct {
	Raw    string `yaml:"raw"`
	Output string `yaml:"output"`
}

// ProviderConfig names one forecast source. Raw is a parquet file or
// directory (a CSV directory for refinitiv).
type ProviderConfig struct {
	Name       string      `yaml:"name"`
	Kind       schema.Kind `yaml:"kind"`
	Raw        string      `yaml:"raw"`
	Output     string      `yaml:"output"`
	SeriesFile string      `yaml:"series_file,omitempty"`
}

type CompareConfig struct {
	// DateRangeClosed is "both" (end date midnight included) or "left".
	DateRangeClosed string `yaml:"date_range_closed"`
	// PowerHourMode is "hour_of_day" or "lead_time".
	PowerHourMode string `yaml:"power_hour_mode"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type VendorConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type FetchConfig struct {
	StartDate     string   `yaml:"start_date"` // YYYY-MM-DD, market zone
	EndDate       string   `yaml:"end_date"`
	AssetKeys     []string `yaml:"asset_keys"`
	ForecastHours []int    `yaml:"forecast_hours"`
	Zones         []string `yaml:"zones"`
}

// EnvOverrides are the settings that may be overridden from the
// environment. Empty values leave the file configuration alone.
type EnvOverrides struct {
	DataDir         string   `envconfig:"DATA_DIR"`
	MarketZone      string   `envconfig:"MARKET_ZONE"`
	Port            int      `envconfig:"PORT"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS"`
	VendorURL       string   `envconfig:"VENDOR_URL"`
	VendorAPIKey    string   `envconfig:"VENDOR_API_KEY"`
	PowerHourMode   string   `envconfig:"POWER_HOUR_MODE"`
	DateRangeClosed string   `envconfig:"DATE_RANGE_CLOSED"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:     "data",
		MarketZone:  schema.MarketZone,
		Compression: "snappy",
		Actuals: ActualsConfig{
			Raw:    "raw_actuals.parquet",
			Output: "actuals.parquet",
		},
		Providers: []ProviderConfig{
			{Name: "enfor", Kind: schema.KindEnfor, Raw: "raw_enfor.parquet", Output: "enfor.parquet"},
			{Name: "eq", Kind: schema.KindEQ, Raw: "eq/raw", Output: "eq.parquet"},
			{Name: "refinitiv", Kind: schema.KindRefinitiv, Raw: "refinitiv/raw", Output: "refinitiv.parquet"},
			{Name: "meteologica", Kind: schema.KindMeteologica, Raw: "raw_meteologica.parquet", Output: "meteologica.parquet"},
		},
		Compare: CompareConfig{
			DateRangeClosed: "both",
			PowerHourMode:   "hour_of_day",
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Vendor: VendorConfig{
			CacheTTL: time.Hour,
		},
		Fetch: FetchConfig{
			StartDate:     "2024-01-01",
			EndDate:       "2024-09-01",
			AssetKeys:     []string{"dk1", "dk1_land", "dk1_sea"},
			ForecastHours: []int{schema.EnforIssueHour},
			Zones:         []string{"DK1"},
		},
	}
}

// Load reads path (or the defaults when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads a config file over the defaults, but does not
// validate it or apply environment overrides.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	// A relative data_dir is interpreted relative to the config file.
	if c.DataDir != "" && !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(filepath.Dir(path), c.DataDir)
	}
	return c, nil
}

// LoadDotEnv loads environment variables from a .env file if one exists.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overlays FORECAST_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	c.Merge(env)
	return nil
}

// Merge overlays non-zero override fields onto c.
func (c *Config) Merge(o EnvOverrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.MarketZone != "" {
		c.MarketZone = o.MarketZone
	}
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	if len(o.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = o.AllowedOrigins
	}
	if o.VendorURL != "" {
		c.Vendor.BaseURL = o.VendorURL
	}
	if o.VendorAPIKey != "" {
		c.Vendor.APIKey = o.VendorAPIKey
	}
	if o.PowerHourMode != "" {
		c.Compare.PowerHourMode = o.PowerHourMode
	}
	if o.DateRangeClosed != "" {
		c.Compare.DateRangeClosed = o.DateRangeClosed
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if _, err := time.LoadLocation(c.MarketZone); err != nil {
		return fmt.Errorf("market_zone invalid: %w", err)
	}
	if c.Actuals.Raw == "" || c.Actuals.Output == "" {
		return errors.New("actuals.raw and actuals.output are required")
	}
	seen := make(map[string]bool)
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("provider %q is configured twice", p.Name)
		}
		seen[p.Name] = true
		if !p.Kind.Valid() {
			return fmt.Errorf("provider %q: unknown kind %q", p.Name, p.Kind)
		}
		if p.Raw == "" || p.Output == "" {
			return fmt.Errorf("provider %q: raw and output are required", p.Name)
		}
	}
	switch c.Compare.DateRangeClosed {
	case "both", "left":
	default:
		return fmt.Errorf("compare.date_range_closed must be \"both\" or \"left\", got %q", c.Compare.DateRangeClosed)
	}
	switch c.Compare.PowerHourMode {
	case "hour_of_day", "lead_time":
	default:
		return fmt.Errorf("compare.power_hour_mode must be \"hour_of_day\" or \"lead_time\", got %q", c.Compare.PowerHourMode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Market returns the market time zone. Validate guarantees it loads.
func (c *Config) Market() *time.Location {
	loc, err := time.LoadLocation(c.MarketZone)
	if err != nil {
		return schema.MarketLocation()
	}
	return loc
}

// Resolve maps a snapshot path onto the data directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Provider returns the named provider's configuration.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// FetchRange parses the fetch window as midnights in the market zone.
func (c *Config) FetchRange() (time.Time, time.Time, error) {
	loc := c.Market()
	from, err := time.ParseInLocation("2006-01-02", c.Fetch.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fetch.start_date: %w", err)
	}
	to, err := time.ParseInLocation("2006-01-02", c.Fetch.EndDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fetch.end_date: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("fetch.end_date is before fetch.start_date")
	}
	return from, to, nil
}
