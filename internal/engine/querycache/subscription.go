package querycache

import (
	"sync"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/engine/mailbox"
)

// Subscription is a handle on one cached query. Every state transition of the
// entry after Subscribe returned is delivered on Updates, in order.
type Subscription struct {
	cache *Cache
	entry *entry
	box   *mailbox.Mailbox[domain.QueryEntry]
	once  sync.Once
}

// Key returns the subscribed query key.
func (s *Subscription) Key() domain.QueryKey {
	return s.entry.key
}

// Updates returns the channel of snapshots. It is closed after Unsubscribe or
// when the cache is closed.
func (s *Subscription) Updates() <-chan domain.QueryEntry {
	return s.box.Out()
}

// Unsubscribe releases the handle. It is safe to call more than once.
// An in-flight fetch is not cancelled; its result is still applied to the entry.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cache.unsubscribe(s)
	})
}
