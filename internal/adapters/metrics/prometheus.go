// Package metrics implements the CacheMetrics port with Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/backoffice/internal/core/domain"
)

const namespace = "backoffice"

// Prometheus records cache and mutation activity on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	lookups       *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	discarded     *prometheus.CounterVec
	evicted       *prometheus.CounterVec
	invalidated   prometheus.Counter
	mutations     *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Query cache reads by resource and result.",
			},
			[]string{"resource", "result"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "fetches_total",
				Help:      "Fetches applied to the query cache.",
			},
			[]string{"resource", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of applied fetches.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"resource"},
		),
		discarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "fetches_discarded_total",
				Help:      "Fetch results dropped because a newer fetch started or the entry was evicted.",
			},
			[]string{"resource"},
		),
		evicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Entries removed after their retention window.",
			},
			[]string{"resource"},
		),
		invalidated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "invalidated_entries_total",
				Help:      "Entries marked stale by invalidation.",
			},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mutation",
				Name:      "executions_total",
				Help:      "Mutations by resource, operation and outcome.",
			},
			[]string{"resource", "operation", "outcome"},
		),
	}

	p.registry.MustRegister(
		p.lookups,
		p.fetches,
		p.fetchDuration,
		p.discarded,
		p.evicted,
		p.invalidated,
		p.mutations,
	)
	return p
}

// Registry returns the registry holding the collectors.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// CacheHit implements ports.CacheMetrics.
func (p *Prometheus) CacheHit(resource string) {
	p.lookups.WithLabelValues(resource, "hit").Inc()
}

// CacheMiss implements ports.CacheMetrics.
func (p *Prometheus) CacheMiss(resource string) {
	p.lookups.WithLabelValues(resource, "miss").Inc()
}

// FetchCompleted implements ports.CacheMetrics.
func (p *Prometheus) FetchCompleted(resource string, d time.Duration, err error) {
	p.fetches.WithLabelValues(resource, Outcome(err)).Inc()
	p.fetchDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// FetchDiscarded implements ports.CacheMetrics.
func (p *Prometheus) FetchDiscarded(resource string) {
	p.discarded.WithLabelValues(resource).Inc()
}

// Invalidated implements ports.CacheMetrics.
func (p *Prometheus) Invalidated(n int) {
	p.invalidated.Add(float64(n))
}

// Evicted implements ports.CacheMetrics.
func (p *Prometheus) Evicted(resource string) {
	p.evicted.WithLabelValues(resource).Inc()
}

// MutationCompleted implements ports.CacheMetrics.
func (p *Prometheus) MutationCompleted(resource, operation string, err error) {
	p.mutations.WithLabelValues(resource, operation, Outcome(err)).Inc()
}

// Outcome maps an error to a low-cardinality label: "ok", the error kind, "canceled" or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
