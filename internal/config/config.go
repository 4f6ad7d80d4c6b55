// Package config loads CityPin settings from an optional YAML file and
// CITYPIN_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

const configEnv = "CITYPIN"

// Config holds all application settings.
type Config struct {
	// PhotosDir is the library root to scan; usually given as the CLI argument.
	PhotosDir string `fig:"photos_dir"`

	// CacheFile is the persisted geocode cache document.
	CacheFile string `fig:"cache_file" default:"location_cache.json"`

	Output struct {
		Photos string `fig:"photos" default:"photos_gps_data.csv"`
		Places string `fig:"places" default:"unique_locations.csv"`
	} `fig:"output"`

	Nominatim struct {
		BaseURL string `fig:"base_url" default:"https://nominatim.openstreetmap.org"`
		// UserAgent identifies the application per the Nominatim usage
		// policy; when empty the CLI fills in its versioned default.
		UserAgent    string        `fig:"user_agent"`
		Timeout      time.Duration `fig:"timeout" default:"10s"`
		RequestDelay time.Duration `fig:"request_delay" default:"1s"`
	} `fig:"nominatim"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `fig:"log_level" default:"info"`
	// LogFormat is text or json.
	LogFormat string `fig:"log_format" default:"text"`

	// MetricsAddr enables the /healthz, /readyz and /metrics HTTP listener
	// when non-empty, e.g. ":9090". Useful for long runs: a large library at
	// one request per second keeps the resolver busy for hours.
	MetricsAddr string `fig:"metrics_addr"`
}

// New loads configuration from environment variables only.
func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("load config: %w", err)
	}
	return conf, conf.Validate()
}

// NewFromFile loads configuration from the given file plus environment
// variables, environment taking precedence.
func NewFromFile(path string) (*Config, error) {
	conf := new(Config)
	if _, err := os.Stat(path); err != nil {
		return conf, fmt.Errorf("read config: %w", err)
	}
	if err := fig.Load(conf, fig.Dirs(filepath.Dir(path)), fig.File(filepath.Base(path)), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("load config: %w", err)
	}
	return conf, conf.Validate()
}

// Validate checks value ranges and rejects inconsistent settings.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	if c.Nominatim.BaseURL == "" {
		return fmt.Errorf("nominatim base URL is required")
	}
	if c.Nominatim.Timeout <= 0 {
		return fmt.Errorf("invalid nominatim timeout: %s", c.Nominatim.Timeout)
	}
	if c.Nominatim.RequestDelay < 0 {
		return fmt.Errorf("invalid nominatim request delay: %s", c.Nominatim.RequestDelay)
	}
	if c.CacheFile == "" {
		return fmt.Errorf("cache file path is required")
	}
	return nil
}
