package ports

import "time"

// CacheMetrics records query cache and mutation activity.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type CacheMetrics interface {
	// CacheHit records a read served from a fresh entry.
	CacheHit(resource string)
	// CacheMiss records a read that required a fetch.
	CacheMiss(resource string)
	// FetchCompleted records a fetch whose result was applied to the cache.
	FetchCompleted(resource string, d time.Duration, err error)
	// FetchDiscarded records a fetch whose result was dropped because a newer fetch
	// was started or the entry was evicted.
	FetchDiscarded(resource string)
	// Invalidated records the number of entries marked stale by one invalidation.
	Invalidated(n int)
	// Evicted records an entry removed by garbage collection.
	Evicted(resource string)
	// MutationCompleted records the outcome of a write.
	MutationCompleted(resource, operation string, err error)
}
