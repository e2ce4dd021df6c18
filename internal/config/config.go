package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "Europe/London"
	defaultRunTimeout = 15 * time.Minute
	configPathEnv     = "SHOWTIMES_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	tmdbAPIKeyEnv     = "TMDB_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Run      RunConfig      `yaml:"run"`
	TMDB     TMDBConfig     `yaml:"tmdb"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Venues   []VenueConfig  `yaml:"venues"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RunConfig bounds one aggregation run.
type RunConfig struct {
	Concurrency int            `yaml:"concurrency"`
	Timeout     string         `yaml:"timeout"`
	Timezone    string         `yaml:"timezone"`
	location    *time.Location `yaml:"-"`
}

// TimeoutDuration parses the run timeout, falling back to the default when
// the value is missing or malformed.
func (r RunConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return defaultRunTimeout
	}
	return d
}

// Location resolves the run timezone string to a time.Location.
func (r RunConfig) Location() *time.Location {
	if r.location != nil {
		return r.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TMDBConfig defines how to contact the external metadata source.
type TMDBConfig struct {
	BaseURL          string  `yaml:"baseUrl"`
	APIKey           string  `yaml:"apiKey"`
	Language         string  `yaml:"language"`
	Parallelism      int     `yaml:"parallelism"`
	ScoreThreshold   float64 `yaml:"scoreThreshold"`
	RefreshNegatives bool    `yaml:"refreshNegatives"`
}

// OutputConfig names the files the run reads and writes.
type OutputConfig struct {
	DatasetPath string `yaml:"datasetPath"`
	CachePath   string `yaml:"cachePath"`
}

// DatabaseConfig describes an optional Postgres sink for the dataset.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// VenueConfig describes a single cinema with its scraper strategy.
type VenueConfig struct {
	Name    string            `yaml:"name"`
	Scraper string            `yaml:"scraper"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Venues) == 0 {
		cfg.Venues = defaultConfig().Venues
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(tmdbAPIKeyEnv); v != "" {
		c.TMDB.APIKey = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Run.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Run.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Run.Concurrency > 0 {
		base.Run.Concurrency = override.Run.Concurrency
	}
	if override.Run.Timeout != "" {
		base.Run.Timeout = override.Run.Timeout
	}
	if override.Run.Timezone != "" {
		base.Run.Timezone = override.Run.Timezone
	}

	if override.TMDB.BaseURL != "" {
		base.TMDB.BaseURL = override.TMDB.BaseURL
	}
	if override.TMDB.APIKey != "" {
		base.TMDB.APIKey = override.TMDB.APIKey
	}
	if override.TMDB.Language != "" {
		base.TMDB.Language = override.TMDB.Language
	}
	if override.TMDB.Parallelism > 0 {
		base.TMDB.Parallelism = override.TMDB.Parallelism
	}
	if override.TMDB.ScoreThreshold > 0 {
		base.TMDB.ScoreThreshold = override.TMDB.ScoreThreshold
	}
	if override.TMDB.RefreshNegatives {
		base.TMDB.RefreshNegatives = true
	}

	if override.Output.DatasetPath != "" {
		base.Output.DatasetPath = override.Output.DatasetPath
	}
	if override.Output.CachePath != "" {
		base.Output.CachePath = override.Output.CachePath
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if len(override.Venues) > 0 {
		base.Venues = override.Venues
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Run: RunConfig{
			Concurrency: 6,
			Timeout:     "15m",
			Timezone:    defaultTimezone,
			location:    tz,
		},
		TMDB: TMDBConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			Language:       "en-GB",
			Parallelism:    2,
			ScoreThreshold: 0.65,
		},
		Output: OutputConfig{
			DatasetPath: "data/showtimes.json",
			CachePath:   "data/tmdb_cache.json",
		},
		Venues: []VenueConfig{
			{
				Name:    "HOME Manchester",
				Scraper: "homemcr",
				URL:     "https://homemcr.org/cinema/",
			},
			{
				Name:    "The Savoy",
				Scraper: "savoy",
				URL:     "https://savoycinemas.co.uk/manchester/whats-on",
			},
		},
	}
}
