// Package config loads application configuration from environment variables.
// All variables use the SIM_ prefix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Simulation  SimulationConfig
	Report      ReportConfig
	Log         LogConfig
	CatalogPath string // catalog file or directory; embedded default when empty
	ParamsPath  string // YAML parameter file; defaults when empty
}

// SimulationConfig holds the run shape.
type SimulationConfig struct {
	Seed           uint64
	Years          int
	EnrollingYears int
	Progress       bool // show a progress bar on stderr
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	Path string // .xlsx workbook; no workbook when empty
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with SIM_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Simulation: SimulationConfig{
			Seed:           envUint64("SIM_SEED", 1),
			Years:          envInt("SIM_YEARS", 12),
			EnrollingYears: envInt("SIM_ENROLLING_YEARS", 8),
			Progress:       envBool("SIM_PROGRESS", true),
		},
		Report: ReportConfig{
			Path: envStr("SIM_REPORT_PATH", ""),
		},
		Log: LogConfig{
			Level:  envStr("SIM_LOG_LEVEL", "info"),
			Format: envStr("SIM_LOG_FORMAT", "text"),
		},
		CatalogPath: envStr("SIM_CATALOG_PATH", ""),
		ParamsPath:  envStr("SIM_PARAMS_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Simulation.Years < 0 {
		return fmt.Errorf("SIM_YEARS must not be negative, got %d", c.Simulation.Years)
	}
	if c.Simulation.EnrollingYears < 0 {
		return fmt.Errorf("SIM_ENROLLING_YEARS must not be negative, got %d", c.Simulation.EnrollingYears)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("SIM_LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("SIM_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Report.Path != "" && !strings.EqualFold(filepath.Ext(c.Report.Path), ".xlsx") {
		return fmt.Errorf("SIM_REPORT_PATH must end in .xlsx, got %q", c.Report.Path)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
