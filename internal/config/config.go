package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// defaultCities is the fixed monitoring set, used when CITIES is unset.
var defaultCities = []domain.City{
	{Name: "Delhi", Lat: 28.7041, Lon: 77.1025},
	{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777},
	{Name: "Bengaluru", Lat: 12.9716, Lon: 77.5946},
	{Name: "Hyderabad", Lat: 17.3850, Lon: 78.4867},
	{Name: "Kolkata", Lat: 22.5726, Lon: 88.3639},
}

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	Cities []domain.City

	DataDir string
	LogFile string

	APIBaseURL     string
	FetchTimeout   time.Duration
	FetchRetries   int
	FetchRetryWait time.Duration

	StoreURL     string
	StoreKey     string
	StoreTimeout time.Duration

	BatchSize      int
	BatchRetryWait time.Duration

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Store credentials are read but not required here; commands
// that talk to the store call RequireStore before doing any work.
func Load() (*Config, error) {
	cities, err := parseCities(os.Getenv("CITIES"))
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}
	fetchRetryWait, err := parseDuration("FETCH_RETRY_WAIT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	storeTimeout, err := parseDuration("STORE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	batchRetryWait, err := parseDuration("BATCH_RETRY_WAIT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	fetchRetries, err := parsePositiveInt("FETCH_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	batchSize, err := parsePositiveInt("BATCH_SIZE", 200)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Cities: cities,

		DataDir: envOrDefault("DATA_DIR", "data"),
		LogFile: envOrDefault("LOG_FILE", filepath.Join("logs", "pipeline.log")),

		APIBaseURL:     envOrDefault("API_BASE_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
		FetchTimeout:   fetchTimeout,
		FetchRetries:   fetchRetries,
		FetchRetryWait: fetchRetryWait,

		StoreURL:     os.Getenv("SUPABASE_URL"),
		StoreKey:     os.Getenv("SUPABASE_KEY"),
		StoreTimeout: storeTimeout,

		BatchSize:      batchSize,
		BatchRetryWait: batchRetryWait,

		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if len(cfg.Cities) == 0 {
		return nil, errors.New("no cities configured")
	}

	return cfg, nil
}

// RequireStore verifies the store credential pair is present. Commands
// that load to or read from the store call this before any work so a
// missing credential is a fatal startup error, not a mid-run surprise.
func (c *Config) RequireStore() error {
	if c.StoreURL == "" || c.StoreKey == "" {
		return errors.New("SUPABASE_URL and SUPABASE_KEY must be set")
	}
	return nil
}

// RawDir is the append-only staging area for raw API responses.
func (c *Config) RawDir() string { return filepath.Join(c.DataDir, "raw") }

// StagedDir holds the transformed CSV consumed by the loader.
func (c *Config) StagedDir() string { return filepath.Join(c.DataDir, "staged") }

// StagedPath is the fixed output path of the transform stage.
func (c *Config) StagedPath() string {
	return filepath.Join(c.StagedDir(), "air_quality_transformed.csv")
}

// ProcessedDir holds analysis CSVs and chart images.
func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }

// parseCities parses a "Name:lat:lon,Name:lat:lon" list. An empty value
// yields the default city set.
func parseCities(s string) ([]domain.City, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultCities, nil
	}

	var cities []domain.City
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid CITIES entry %q: want name:lat:lon", part)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in CITIES entry %q", part)
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in CITIES entry %q", part)
		}
		cities = append(cities, domain.City{Name: strings.TrimSpace(fields[0]), Lat: lat, Lon: lon})
	}
	return cities, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
