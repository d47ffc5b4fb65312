// Package app implements the application layer of the back-office client.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"go.trai.ch/backoffice/internal/adapters/httpapi"
	"go.trai.ch/backoffice/internal/adapters/telemetry"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/backoffice/internal/engine/resource"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	metrics      ports.CacheMetrics
	httpClient   *http.Client
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, log ports.Logger, metrics ports.CacheMetrics) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		metrics:      metrics,
	}
}

// WithHTTPClient replaces the HTTP client used by every session.
// This is primarily used for testing against httptest servers.
func (a *App) WithHTTPClient(c *http.Client) *App {
	a.httpClient = c
	return a
}

// Metrics returns the recorder shared by every session.
func (a *App) Metrics() ports.CacheMetrics {
	return a.metrics
}

// Options selects the configuration of a session.
type Options struct {
	// ConfigPath is read as is when set. Otherwise the file is searched for from Cwd up.
	ConfigPath string
	// Cwd defaults to the process working directory.
	Cwd      string
	Verbose  bool
	JSONLogs bool
	// Retries is how many times a read failing with a network error or a timeout is
	// repeated. Writes are never repeated.
	Retries int
}

// retryDelay is the wait before the first repeated read. It doubles after every retry.
const retryDelay = 250 * time.Millisecond

// Config resolves the effective configuration with the command-line overrides applied.
func (a *App) Config(opts Options) (domain.Config, error) {
	cwd := opts.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return domain.Config{}, zerr.Wrap(err, "failed to get working directory")
		}
		cwd = wd
	}

	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return domain.Config{}, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if opts.JSONLogs {
		cfg.Log.JSON = true
	}
	return cfg, nil
}

type levelSetter interface {
	SetLevel(name string)
}

type jsonSetter interface {
	SetJSON(enable bool)
}

// Open loads the configuration and builds a session on top of it: the HTTP client,
// the resource services, the query cache and the mutation coordinator.
func (a *App) Open(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := a.Config(opts)
	if err != nil {
		return nil, err
	}
	a.configureLogger(cfg.Log)

	var tracer ports.Tracer = telemetry.NewNoOpTracer()
	shutdown := func(context.Context) error { return nil }
	if cfg.Telemetry.Tracing {
		otelTracer, stop := telemetry.Setup(a.logger)
		tracer, shutdown = otelTracer, stop
	}

	client, err := httpapi.New(httpapi.Options{
		BaseURL:    cfg.API.BaseURL,
		Token:      cfg.API.Token,
		Timeout:    cfg.API.Timeout,
		RateLimit:  cfg.API.RateLimit,
		Burst:      cfg.API.Burst,
		HTTPClient: a.httpClient,
	}, tracer, a.logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	a.logger.Debug("session opened against " + cfg.API.BaseURL)
	retry := resource.RetryPolicy{Attempts: max(opts.Retries, 0) + 1, Delay: retryDelay}
	return newSession(cfg, client, tracer, a.logger, a.metrics, retry, shutdown), nil
}

func (a *App) configureLogger(cfg domain.LogConfig) {
	if s, ok := a.logger.(jsonSetter); ok {
		s.SetJSON(cfg.JSON)
	}
	if s, ok := a.logger.(levelSetter); ok && cfg.Level != "" {
		s.SetLevel(cfg.Level)
	}
}
