package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"

	"github.com/rtm0/precip/internal/observability"
	"github.com/rtm0/precip/internal/precip"
)

// Config holds the settings shared by all subcommands.
type Config struct {
	Latitude      float64
	Longitude     float64
	DataDirectory string
	Field         string
	LogLevel      string
	LogFormat     string
	MetricsFile   string

	// VictoriaMetrics export.
	VMInsertURL   string
	Concurrency   int
	RecsPerInsert int
}

// Default returns a Config with defaults applied, honouring environment
// overrides where they are set.
func Default() *Config {
	return &Config{
		Field:         envOrDefault("PRECIP_VARIABLE", precip.DefaultField),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("LOG_FORMAT", "text"),
		MetricsFile:   os.Getenv("METRICS_FILE"),
		VMInsertURL:   os.Getenv("VM_INSERT_URL"),
		Concurrency:   runtime.NumCPU(),
		RecsPerInsert: 500,
	}
}

// Validate checks the values set from flags and the environment.
func (c *Config) Validate() error {
	if c.DataDirectory == "" {
		return errors.New("data directory is required")
	}
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("latitude %v outside [-90, 90]", c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 360) {
		return fmt.Errorf("longitude %v outside [-180, 360]", c.Longitude)
	}
	if c.Field == "" {
		return errors.New("field variable name is required")
	}
	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format %q is not text or json", c.LogFormat)
	}
	if c.VMInsertURL != "" {
		if _, err := url.ParseRequestURI(c.VMInsertURL); err != nil {
			return fmt.Errorf("invalid VM insert URL: %w", err)
		}
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.RecsPerInsert <= 0 {
		return fmt.Errorf("records per insert must be positive, got %d", c.RecsPerInsert)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
