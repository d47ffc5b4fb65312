// Package listview keeps a paginated, filtered list subscribed in the query cache.
// It owns the page state of one list screen and follows it as the user pages,
// filters, or the underlying data shrinks.
package listview

import (
	"fmt"
	"sync"
	"time"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/backoffice/internal/engine/mailbox"
	"go.trai.ch/backoffice/internal/engine/querycache"
)

// Snapshot is the state of the view after a transition.
type Snapshot struct {
	State domain.PageState
	Entry domain.QueryEntry
}

// Option configures a View.
type Option func(*View)

// WithRefetchInterval revalidates the displayed page every d. Zero disables polling.
func WithRefetchInterval(d time.Duration) Option {
	return func(v *View) {
		v.interval = d
	}
}

// View is the data side of one list screen.
type View struct {
	cache    *querycache.Cache
	source   Source
	logger   ports.Logger
	interval time.Duration

	out  *mailbox.Mailbox[Snapshot]
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	state   domain.PageState
	key     domain.QueryKey
	sub     *querycache.Subscription
	current domain.QueryEntry
	closed  bool
}

// New opens a view on initial and subscribes to its page.
func New(cache *querycache.Cache, source Source, logger ports.Logger, initial domain.PageState, opts ...Option) (*View, error) {
	v := &View{
		cache:  cache,
		source: source,
		logger: logger,
		out:    mailbox.New[Snapshot](),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.mu.Lock()
	err := v.moveLocked(initial.Normalize())
	v.mu.Unlock()
	if err != nil {
		v.out.Close()
		return nil, err
	}

	if v.interval > 0 {
		v.wg.Add(1)
		go v.poll()
	}
	return v, nil
}

// State returns the current page state.
func (v *View) State() domain.PageState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Current returns the latest snapshot of the displayed page.
func (v *View) Current() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{State: v.state, Entry: v.current}
}

// Updates delivers every snapshot of the displayed page, starting with the one
// taken when the view opened. Snapshots of pages the view has moved away from
// are never delivered. The channel is closed by Close.
func (v *View) Updates() <-chan Snapshot {
	return v.out.Out()
}

// SetPage moves to page n. Pages below 1 become 1.
func (v *View) SetPage(n int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := v.state
	next.Page = n
	return v.moveLocked(next.Normalize())
}

// SetFilter applies a filter and returns to page 1. An empty value removes the filter.
func (v *View) SetFilter(field, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.moveLocked(v.state.WithFilter(field, value))
}

// Refresh revalidates the displayed page.
func (v *View) Refresh() {
	v.mu.Lock()
	key := v.key
	closed := v.closed
	v.mu.Unlock()

	if !closed {
		v.cache.Refetch(key)
	}
}

// Close releases the subscription and closes Updates.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	close(v.done)
	if sub != nil {
		sub.Unsubscribe()
	}
	v.wg.Wait()
	v.out.Close()
}

func (v *View) moveLocked(next domain.PageState) error {
	if v.closed {
		return domain.ErrCacheClosed
	}
	if err := v.switchLocked(next); err != nil {
		return err
	}
	v.out.Push(Snapshot{State: v.state, Entry: v.current})
	v.clampLocked(v.current)
	return nil
}

// switchLocked points the view at next. The old subscription is released after the
// new one is taken so an entry shared by both pages is never scheduled for eviction.
func (v *View) switchLocked(next domain.PageState) error {
	key, err := v.source.Key(next)
	if err != nil {
		return err
	}
	if v.sub != nil && key.Equal(v.key) {
		v.state = next
		return nil
	}

	sub, snap, err := v.cache.Subscribe(key, v.source.Fetcher(next))
	if err != nil {
		return err
	}

	old := v.sub
	v.state = next
	v.key = key
	v.sub = sub
	v.current = snap
	if old != nil {
		old.Unsubscribe()
	}

	v.wg.Add(1)
	go v.forward(sub)
	return nil
}

func (v *View) forward(sub *querycache.Subscription) {
	defer v.wg.Done()
	for entry := range sub.Updates() {
		v.mu.Lock()
		if sub == v.sub && !v.closed {
			v.current = entry
			v.out.Push(Snapshot{State: v.state, Entry: entry})
			v.clampLocked(entry)
		}
		v.mu.Unlock()
	}
}

// clampLocked moves back into range when a successful page reports fewer pages
// than the current page number.
func (v *View) clampLocked(entry domain.QueryEntry) {
	if entry.Status != domain.StatusSuccess {
		return
	}
	info, ok := entry.Data.(domain.PageInfo)
	if !ok {
		return
	}
	next := v.state
	if !next.Clamp(info.PageMeta().TotalPages) {
		return
	}
	v.logger.Debug(fmt.Sprintf("page %d out of range, moving to page %d", v.state.Page, next.Page))
	if err := v.moveLocked(next); err != nil {
		v.logger.Warn(fmt.Sprintf("failed to move to page %d: %v", next.Page, err))
	}
}

func (v *View) poll() {
	defer v.wg.Done()
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		select {
		case <-v.done:
			return
		case <-ticker.C:
			v.Refresh()
		}
	}
}
