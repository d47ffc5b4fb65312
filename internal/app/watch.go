package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/engine/listview"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultWatchInterval is the polling interval used when WatchOptions.Interval is zero.
const DefaultWatchInterval = 30 * time.Second

const shutdownTimeout = 5 * time.Second

// WatchOptions configures Watch.
type WatchOptions struct {
	Resource string
	State    domain.PageState
	Interval time.Duration
	// MetricsAddr serves the session metrics on /metrics while watching when set.
	MetricsAddr string
}

// metricsHandler is implemented by recorders that can be scraped.
type metricsHandler interface {
	Handler() http.Handler
}

// Watch keeps a list page subscribed and calls render with every snapshot until ctx
// is done or render fails. The page is revalidated every interval.
func (s *Session) Watch(ctx context.Context, opts WatchOptions, render func(listview.Snapshot) error) error {
	r, err := s.Resource(opts.Resource)
	if err != nil {
		return err
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	var scrape http.Handler
	if opts.MetricsAddr != "" {
		h, ok := s.metrics.(metricsHandler)
		if !ok {
			return zerr.Wrap(domain.ErrInvalidConfig, "metrics recorder cannot be scraped")
		}
		scrape = h.Handler()
	}

	view, err := listview.New(s.Cache, r.Source(), s.logger, opts.State, listview.WithRefetchInterval(interval))
	if err != nil {
		return err
	}
	defer view.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap, ok := <-view.Updates():
				if !ok {
					return nil
				}
				if err := render(snap); err != nil {
					return err
				}
			}
		}
	})

	if scrape != nil {
		g.Go(func() error {
			return serveMetrics(ctx, opts.MetricsAddr, scrape)
		})
		s.logger.Info("serving metrics on " + opts.MetricsAddr + "/metrics")
	}

	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return zerr.With(zerr.Wrap(err, "metrics server failed"), "addr", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.Wrap(err, "metrics server shutdown failed")
		}
		return nil
	}
}
