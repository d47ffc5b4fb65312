package metrics

import "time"

// NoOp discards every measurement.
type NoOp struct{}

// CacheHit does nothing.
func (NoOp) CacheHit(string) {}

// CacheMiss does nothing.
func (NoOp) CacheMiss(string) {}

// FetchCompleted does nothing.
func (NoOp) FetchCompleted(string, time.Duration, error) {}

// FetchDiscarded does nothing.
func (NoOp) FetchDiscarded(string) {}

// Invalidated does nothing.
func (NoOp) Invalidated(int) {}

// Evicted does nothing.
func (NoOp) Evicted(string) {}

// MutationCompleted does nothing.
func (NoOp) MutationCompleted(string, string, error) {}
