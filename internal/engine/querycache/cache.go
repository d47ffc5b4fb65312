// Package querycache implements the keyed store of read results shared by every
// view of a session. It serves cached data immediately, revalidates in the
// background, and runs at most one fetch per key at a time.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/backoffice/internal/engine/mailbox"
	"go.trai.ch/zerr"
)

// Fetcher loads the data of one query. The context is cancelled when the fetch
// is superseded, when its entry is evicted, or when the cache is closed.
type Fetcher func(ctx context.Context) (any, error)

// Cache is the query cache. Create one per session with New and release it with Close.
type Cache struct {
	logger  ports.Logger
	tracer  ports.Tracer
	metrics ports.CacheMetrics

	staleTime time.Duration
	gcTime    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[uint64][]*entry // fingerprint -> entries sharing it
	count   int
	closed  bool
}

type entry struct {
	key           domain.QueryKey
	fingerprint   uint64
	fetch         Fetcher
	data          any
	status        domain.QueryStatus
	err           error
	lastFetchedAt time.Time
	stale         bool
	subs          map[*Subscription]struct{}

	generation uint64
	inflight   *inflight

	gcTimer *time.Timer
	gcSeq   uint64
}

type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// New creates a Cache using the default stale and retention windows.
func New(logger ports.Logger, tracer ports.Tracer, metrics ports.CacheMetrics, opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		logger:    logger,
		tracer:    tracer,
		metrics:   metrics,
		staleTime: domain.DefaultStaleTime,
		gcTime:    domain.DefaultGCTime,
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[uint64][]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers interest in key and returns the current snapshot of its entry.
// A fetch is started when the entry has never been fetched, is stale, failed last
// time, or is older than the stale window, unless one is already in flight.
// A non-nil fetch replaces the fetcher used by later revalidations of the entry; it
// may only be nil when the key is already cached.
func (c *Cache) Subscribe(key domain.QueryKey, fetch Fetcher) (*Subscription, domain.QueryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.QueryEntry{}, domain.ErrCacheClosed
	}

	e := c.lookupLocked(key)
	if e == nil {
		if fetch == nil {
			return nil, domain.QueryEntry{}, zerr.Wrap(domain.ErrMissingFetcher, key.String())
		}
		e = c.insertLocked(key)
	}
	if fetch != nil {
		e.fetch = fetch
	}
	c.cancelGCLocked(e)

	if c.needsFetchLocked(e) {
		c.metrics.CacheMiss(key.Resource)
		c.startFetchLocked(e)
	} else {
		c.metrics.CacheHit(key.Resource)
	}

	sub := &Subscription{cache: c, entry: e, box: mailbox.New[domain.QueryEntry]()}
	e.subs[sub] = struct{}{}
	return sub, e.snapshot(), nil
}

// Fetch reads key once: it subscribes, waits until the entry settles, and unsubscribes.
// A fresh cached result is returned without a fetch.
func (c *Cache) Fetch(ctx context.Context, key domain.QueryKey, fetch Fetcher) (any, error) {
	sub, current, err := c.Subscribe(key, fetch)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	for !current.Status.Settled() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case next, ok := <-sub.Updates():
			if !ok {
				return nil, domain.ErrCacheClosed
			}
			current = next
		}
	}
	if current.Status == domain.StatusError {
		return nil, current.Err
	}
	return current.Data, nil
}

// Get is the typed form of Fetch.
func Get[T any](ctx context.Context, c *Cache, key domain.QueryKey, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	data, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := data.(T)
	if !ok {
		return zero, zerr.With(zerr.Wrap(domain.ErrUnexpectedData, key.String()), "type", fmt.Sprintf("%T", data))
	}
	return typed, nil
}

// Invalidate marks every entry matching one of the patterns as stale and returns how
// many matched. Entries with subscribers refetch immediately, superseding any fetch
// already in flight; the others drop their in-flight fetch and refetch on their next
// subscription.
func (c *Cache) Invalidate(patterns ...domain.KeyPattern) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}

	n := 0
	for _, bucket := range c.entries {
		for _, e := range bucket {
			if !matchesAny(patterns, e.key) {
				continue
			}
			n++
			e.stale = true
			if len(e.subs) > 0 {
				c.startFetchLocked(e)
			} else {
				c.abandonFetchLocked(e)
			}
		}
	}

	if n > 0 {
		c.metrics.Invalidated(n)
		c.logger.Debug(fmt.Sprintf("invalidated %d cached queries", n))
	}
	return n
}

// Refetch starts a new fetch for key, superseding any fetch in flight.
// It reports false when the key is not cached.
func (c *Cache) Refetch(key domain.QueryKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	e := c.lookupLocked(key)
	if e == nil {
		return false
	}
	c.startFetchLocked(e)
	return true
}

// Peek returns the current snapshot of key without subscribing.
func (c *Cache) Peek(key domain.QueryKey) (domain.QueryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookupLocked(key)
	if e == nil {
		return domain.QueryEntry{}, false
	}
	return e.snapshot(), true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Close cancels every in-flight fetch, ends every subscription and drops all entries.
// It waits for running fetchers to return. Later calls to Subscribe fail with
// ErrCacheClosed.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	for _, bucket := range c.entries {
		for _, e := range bucket {
			if e.gcTimer != nil {
				e.gcTimer.Stop()
			}
			for sub := range e.subs {
				sub.box.Close()
			}
		}
	}
	c.entries = make(map[uint64][]*entry)
	c.count = 0
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Cache) unsubscribe(sub *Subscription) {
	sub.box.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	e := sub.entry
	if _, ok := e.subs[sub]; !ok {
		return
	}
	delete(e.subs, sub)
	if len(e.subs) == 0 && !c.closed {
		c.scheduleGCLocked(e)
	}
}

func (c *Cache) lookupLocked(key domain.QueryKey) *entry {
	for _, e := range c.entries[key.Fingerprint()] {
		if e.key.Equal(key) {
			return e
		}
	}
	return nil
}

func (c *Cache) insertLocked(key domain.QueryKey) *entry {
	e := &entry{
		key:         domain.NewQueryKey(key.Resource, key.Params),
		fingerprint: key.Fingerprint(),
		status:      domain.StatusIdle,
		subs:        make(map[*Subscription]struct{}),
	}
	c.entries[e.fingerprint] = append(c.entries[e.fingerprint], e)
	c.count++
	return e
}

func (c *Cache) removeLocked(e *entry) bool {
	bucket := c.entries[e.fingerprint]
	for i, candidate := range bucket {
		if candidate != e {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(c.entries, e.fingerprint)
		} else {
			c.entries[e.fingerprint] = bucket
		}
		c.count--
		return true
	}
	return false
}

func (c *Cache) needsFetchLocked(e *entry) bool {
	if e.inflight != nil {
		return false
	}
	switch e.status {
	case domain.StatusIdle, domain.StatusError:
		return true
	}
	return e.stale || time.Since(e.lastFetchedAt) >= c.staleTime
}

// startFetchLocked begins a new fetch generation. A fetch already in flight is
// cancelled and its result will be discarded.
func (c *Cache) startFetchLocked(e *entry) {
	if e.fetch == nil {
		return
	}
	if e.inflight != nil {
		e.inflight.cancel()
	}

	e.generation++
	ctx, cancel := context.WithCancel(c.ctx)
	e.inflight = &inflight{generation: e.generation, cancel: cancel}
	e.status = domain.StatusLoading
	c.notifyLocked(e)

	c.wg.Add(1)
	go c.run(ctx, e, e.generation, e.fetch)
}

// abandonFetchLocked supersedes the fetch in flight without starting another one.
// Its result predates the invalidation and must not clear the stale mark.
func (c *Cache) abandonFetchLocked(e *entry) {
	if e.inflight == nil {
		return
	}
	e.inflight.cancel()
	e.inflight = nil
	e.generation++
	switch {
	case e.err != nil:
		e.status = domain.StatusError
	case e.lastFetchedAt.IsZero():
		e.status = domain.StatusIdle
	default:
		e.status = domain.StatusSuccess
	}
}

func (c *Cache) run(ctx context.Context, e *entry, generation uint64, fetch Fetcher) {
	defer c.wg.Done()

	ctx, span := c.tracer.Start(ctx, "query "+e.key.Resource,
		ports.WithAttribute("query.key", e.key.String()),
		ports.WithAttribute("query.generation", generation),
	)
	start := time.Now()
	data, err := fetch(ctx)
	span.RecordError(err)
	span.End()

	c.complete(e, generation, data, err, time.Since(start))
}

// complete applies a fetch result. Results of superseded generations and of
// evicted entries are dropped.
func (c *Cache) complete(e *entry, generation uint64, data any, err error, took time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if e.inflight == nil || e.inflight.generation != generation || c.lookupLocked(e.key) != e {
		c.metrics.FetchDiscarded(e.key.Resource)
		c.logger.Debug(fmt.Sprintf("discarded result of %s (generation %d)", e.key, generation))
		return
	}

	e.inflight.cancel()
	e.inflight = nil
	if err != nil {
		e.status = domain.StatusError
		e.err = err
	} else {
		e.status = domain.StatusSuccess
		e.data = data
		e.err = nil
		e.stale = false
		e.lastFetchedAt = time.Now()
	}
	c.metrics.FetchCompleted(e.key.Resource, took, err)
	c.notifyLocked(e)
}

func (c *Cache) notifyLocked(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshot()
	for sub := range e.subs {
		sub.box.Push(snap)
	}
}

func (c *Cache) scheduleGCLocked(e *entry) {
	if c.gcTime <= 0 {
		c.evictLocked(e)
		return
	}
	e.gcSeq++
	seq := e.gcSeq
	e.gcTimer = time.AfterFunc(c.gcTime, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || e.gcSeq != seq || len(e.subs) > 0 {
			return
		}
		c.evictLocked(e)
	})
}

func (c *Cache) cancelGCLocked(e *entry) {
	e.gcSeq++
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}

func (c *Cache) evictLocked(e *entry) {
	if !c.removeLocked(e) {
		return
	}
	if e.inflight != nil {
		e.inflight.cancel()
	}
	c.metrics.Evicted(e.key.Resource)
	c.logger.Debug("evicted " + e.key.String())
}

func (e *entry) snapshot() domain.QueryEntry {
	return domain.QueryEntry{
		Key:             e.key,
		Data:            e.data,
		Status:          e.status,
		Err:             e.err,
		LastFetchedAt:   e.lastFetchedAt,
		SubscriberCount: len(e.subs),
		Stale:           e.stale,
	}
}

func matchesAny(patterns []domain.KeyPattern, key domain.QueryKey) bool {
	for _, p := range patterns {
		if p.Matches(key) {
			return true
		}
	}
	return false
}
