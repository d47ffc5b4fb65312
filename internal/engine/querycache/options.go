package querycache

import (
	"time"

	"go.trai.ch/backoffice/internal/core/domain"
)

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long a successful result is served without revalidation.
// Zero revalidates on every new subscription.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		c.staleTime = max(d, 0)
	}
}

// WithGCTime sets how long an entry without subscribers is retained before eviction.
// Zero evicts as soon as the last subscriber leaves.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) {
		c.gcTime = max(d, 0)
	}
}

// WithConfig applies the cache section of the effective configuration.
func WithConfig(cfg domain.CacheConfig) Option {
	return func(c *Cache) {
		WithStaleTime(cfg.StaleTime)(c)
		WithGCTime(cfg.GCTime)(c)
	}
}
