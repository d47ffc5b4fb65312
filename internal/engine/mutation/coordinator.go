// Package mutation runs writes against the API and invalidates the cached
// queries they affect once the server has confirmed them.
package mutation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/zerr"
)

// Invalidator marks cached queries stale. *querycache.Cache implements it.
type Invalidator interface {
	Invalidate(patterns ...domain.KeyPattern) int
}

// Request describes one write.
type Request struct {
	Resource  string
	Operation domain.Operation
	// ID names the affected entity for logs; empty for creates.
	ID string
	// Affects lists the query patterns to invalidate on success.
	// When empty, every query of Resource is invalidated.
	Affects []domain.KeyPattern
	// Perform executes the write.
	Perform func(ctx context.Context) (any, error)
}

// Coordinator executes mutations. Identical requests are never deduplicated.
type Coordinator struct {
	cache   Invalidator
	logger  ports.Logger
	tracer  ports.Tracer
	metrics ports.CacheMetrics
}

// New creates a Coordinator invalidating entries of cache.
func New(cache Invalidator, logger ports.Logger, tracer ports.Tracer, metrics ports.CacheMetrics) *Coordinator {
	return &Coordinator{
		cache:   cache,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

// Execute performs the write. On success the affected queries are invalidated and the
// server result is returned. On failure the cache is left untouched and the error is
// returned as is.
func (c *Coordinator) Execute(ctx context.Context, req Request) (result any, err error) {
	if req.Perform == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedOperation, string(req.Operation)), "resource", req.Resource)
	}

	id := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("mutation %s %s", req.Operation, req.Resource),
		ports.WithAttribute("mutation.id", id),
		ports.WithAttribute("mutation.resource", req.Resource),
		ports.WithAttribute("mutation.operation", string(req.Operation)),
	)
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	result, err = req.Perform(ctx)
	c.metrics.MutationCompleted(req.Resource, string(req.Operation), err)
	if err != nil {
		c.logger.Debug(fmt.Sprintf("mutation %s: %s failed: %v", id, describe(req), err))
		return nil, err
	}

	affects := req.Affects
	if len(affects) == 0 {
		affects = []domain.KeyPattern{domain.PatternFor(req.Resource)}
	}
	n := c.cache.Invalidate(affects...)
	span.SetAttribute("mutation.invalidated", n)
	c.logger.Debug(fmt.Sprintf("mutation %s: %s invalidated %d queries", id, describe(req), n))
	return result, nil
}

// Run is the typed form of Execute.
func Run[T any](ctx context.Context, c *Coordinator, req Request, perform func(context.Context) (T, error)) (T, error) {
	var zero T
	req.Perform = func(ctx context.Context) (any, error) {
		return perform(ctx)
	}
	result, err := c.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, zerr.With(zerr.Wrap(domain.ErrUnexpectedData, req.Resource), "type", fmt.Sprintf("%T", result))
	}
	return typed, nil
}

func describe(req Request) string {
	if req.ID == "" {
		return fmt.Sprintf("%s %s", req.Operation, req.Resource)
	}
	return fmt.Sprintf("%s %s/%s", req.Operation, req.Resource, req.ID)
}
