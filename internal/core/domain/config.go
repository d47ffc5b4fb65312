package domain

import (
	"os"
	"path/filepath"
	"time"
)

// ConfigFileName is the name of the configuration file searched for from the working directory up.
const ConfigFileName = "backoffice.yaml"

// Config is the effective configuration of a session.
type Config struct {
	API       APIConfig
	Cache     CacheConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	// Source is the path of the file the configuration was read from, empty for defaults.
	Source string
}

// APIConfig configures the HTTP client adapter.
type APIConfig struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	StaleTime time.Duration
	GCTime    time.Duration
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string
	JSON  bool
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	Tracing bool
}

// Default values applied when neither the file nor the environment set a field.
const (
	DefaultBaseURL   = "http://localhost:3000/api"
	DefaultTimeout   = 15 * time.Second
	DefaultStaleTime = 30 * time.Second
	DefaultGCTime    = 5 * time.Minute
)

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Cache: CacheConfig{
			StaleTime: DefaultStaleTime,
			GCTime:    DefaultGCTime,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "backoffice", "config.yaml")
}
