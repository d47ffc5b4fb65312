// Package config provides the configuration loader for the back-office client.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BACKOFFICE_"

// Loader implements ports.ConfigLoader using a YAML file and environment overrides.
type Loader struct {
	Logger ports.Logger
	// Environ replaces the process environment when set. Used for testing.
	Environ map[string]string
	// UserConfigPath is the fallback file read when no file is found from cwd up.
	UserConfigPath string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:         logger,
		UserConfigPath: domain.DefaultConfigPath(),
	}
}

// Load resolves the effective configuration.
func (l *Loader) Load(cwd, path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path == "" {
		path = l.discover(cwd)
	}
	if path != "" {
		var file Configfile
		if err := readAndUnmarshalYAML(path, &file); err != nil {
			return domain.Config{}, zerr.With(err, "path", path)
		}
		applyFile(&cfg, &file)
		cfg.Source = path
		l.Logger.Debug("loaded configuration from " + path)
	}

	if err := l.applyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}

	if cfg.API.RateLimit > 0 && cfg.API.Burst == 0 {
		cfg.API.Burst = 1
	}

	if err := validate(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// discover walks up from cwd looking for the config file and falls back to the
// per-user file. It returns an empty path when neither exists.
func (l *Loader) discover(cwd string) string {
	if cwd != "" {
		dir := cwd
		for {
			candidate := filepath.Join(dir, domain.ConfigFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if l.UserConfigPath != "" {
		if _, err := os.Stat(l.UserConfigPath); err == nil {
			return l.UserConfigPath
		}
	}
	return ""
}

func applyFile(cfg *domain.Config, file *Configfile) {
	if file.API.BaseURL != "" {
		cfg.API.BaseURL = file.API.BaseURL
	}
	if file.API.Token != "" {
		cfg.API.Token = file.API.Token
	}
	if file.API.Timeout != 0 {
		cfg.API.Timeout = file.API.Timeout
	}
	if file.API.RateLimit != 0 {
		cfg.API.RateLimit = file.API.RateLimit
	}
	if file.API.Burst != 0 {
		cfg.API.Burst = file.API.Burst
	}
	if file.Cache.StaleTime != 0 {
		cfg.Cache.StaleTime = file.Cache.StaleTime
	}
	if file.Cache.GCTime != 0 {
		cfg.Cache.GCTime = file.Cache.GCTime
	}
	if file.Log.Level != "" {
		cfg.Log.Level = file.Log.Level
	}
	cfg.Log.JSON = cfg.Log.JSON || file.Log.JSON
	cfg.Telemetry.Tracing = cfg.Telemetry.Tracing || file.Telemetry.Tracing
}

func (l *Loader) applyEnv(cfg *domain.Config) error {
	o := envOverrides{
		BaseURL:   cfg.API.BaseURL,
		Token:     cfg.API.Token,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		StaleTime: cfg.Cache.StaleTime,
		GCTime:    cfg.Cache.GCTime,
		LogLevel:  cfg.Log.Level,
		LogJSON:   cfg.Log.JSON,
		Tracing:   cfg.Telemetry.Tracing,
	}

	opts := env.Options{Prefix: EnvPrefix}
	if l.Environ != nil {
		opts.Environment = l.Environ
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "environment"), "cause", err.Error())
	}

	cfg.API = domain.APIConfig{
		BaseURL:   o.BaseURL,
		Token:     o.Token,
		Timeout:   o.Timeout,
		RateLimit: o.RateLimit,
		Burst:     o.Burst,
	}
	cfg.Cache = domain.CacheConfig{StaleTime: o.StaleTime, GCTime: o.GCTime}
	cfg.Log = domain.LogConfig{Level: o.LogLevel, JSON: o.LogJSON}
	cfg.Telemetry = domain.TelemetryConfig{Tracing: o.Tracing}
	return nil
}

func validate(cfg domain.Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("api.baseURL", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return invalid("api.timeout", cfg.API.Timeout)
	}
	if cfg.API.RateLimit < 0 {
		return invalid("api.rateLimit", cfg.API.RateLimit)
	}
	if cfg.API.Burst < 0 {
		return invalid("api.burst", cfg.API.Burst)
	}
	if cfg.Cache.StaleTime < 0 {
		return invalid("cache.staleTime", cfg.Cache.StaleTime)
	}
	if cfg.Cache.GCTime < 0 {
		return invalid("cache.gcTime", cfg.Cache.GCTime)
	}
	return nil
}

func invalid(field string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, field), "value", fmt.Sprint(value))
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is chosen by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.Wrap(domain.ErrConfigReadFailed, "config file does not exist")
		}
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
