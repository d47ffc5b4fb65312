package domain

import "time"

// QueryStatus is the lifecycle state of a cached query.
type QueryStatus uint8

const (
	// StatusIdle indicates the entry exists but no fetch has started.
	StatusIdle QueryStatus = iota
	// StatusLoading indicates a fetch is in flight. Data from the previous fetch is kept.
	StatusLoading
	// StatusSuccess indicates the last applied fetch succeeded.
	StatusSuccess
	// StatusError indicates the last applied fetch failed.
	StatusError
)

// String returns the lowercase name of the status.
func (s QueryStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Settled reports whether the status is terminal for a single fetch.
func (s QueryStatus) Settled() bool {
	return s == StatusSuccess || s == StatusError
}

// QueryEntry is a point-in-time snapshot of a cached query.
// The query cache owns the live entry; subscribers only ever see copies.
type QueryEntry struct {
	Key             QueryKey
	Data            any
	Status          QueryStatus
	Err             error
	LastFetchedAt   time.Time
	SubscriberCount int
	Stale           bool
}
