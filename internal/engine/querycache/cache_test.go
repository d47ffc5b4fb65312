package querycache_test

import (
	"context"
	"fmt"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/backoffice/internal/adapters/metrics"
	"go.trai.ch/backoffice/internal/adapters/telemetry"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports/mocks"
	"go.trai.ch/backoffice/internal/engine/querycache"
	"go.uber.org/mock/gomock"
)

type result struct {
	data any
	err  error
}

type call struct {
	ctx   context.Context
	reply chan result
}

// fakeAPI hands every fetch to the test, which answers it explicitly.
type fakeAPI struct {
	calls        chan call
	ignoreCancel bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(chan call, 64)}
}

func (f *fakeAPI) fetch(ctx context.Context) (any, error) {
	c := call{ctx: ctx, reply: make(chan result, 1)}
	f.calls <- c
	if f.ignoreCancel {
		r := <-c.reply
		return r.data, r.err
	}
	select {
	case r := <-c.reply:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeAPI) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(time.Hour):
		t.Fatal("expected a fetch")
		return call{}
	}
}

func (f *fakeAPI) pending() int {
	return len(f.calls)
}

func newCache(t *testing.T, opts ...querycache.Option) *querycache.Cache {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return querycache.New(mockLogger, telemetry.NewNoOpTracer(), metrics.NoOp{}, opts...)
}

func nextUpdate(t *testing.T, sub *querycache.Subscription) domain.QueryEntry {
	t.Helper()
	select {
	case e, ok := <-sub.Updates():
		require.True(t, ok, "updates closed")
		return e
	case <-time.After(time.Hour):
		t.Fatal("expected an update")
		return domain.QueryEntry{}
	}
}

func assertNoUpdate(t *testing.T, sub *querycache.Subscription) {
	t.Helper()
	synctest.Wait()
	select {
	case e := <-sub.Updates():
		t.Fatalf("unexpected update: %+v", e)
	default:
	}
}

var productsPage1 = domain.NewQueryKey("products", domain.Params{"page": "1", "limit": "10"})

func TestCache_ConcurrentSubscribersShareOneFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)
		defer c.Close()

		subs := make(chan *querycache.Subscription, 10)
		for range 10 {
			go func() {
				sub, _, err := c.Subscribe(productsPage1, api.fetch)
				assert.NoError(t, err)
				subs <- sub
			}()
		}
		synctest.Wait()

		require.Equal(t, 1, api.pending(), "exactly one network call")
		api.next(t).reply <- result{data: "page one"}

		for range 10 {
			sub := <-subs
			got := nextUpdate(t, sub)
			assert.Equal(t, domain.StatusSuccess, got.Status)
			assert.Equal(t, "page one", got.Data)
		}
		assert.Zero(t, api.pending())

		entry, ok := c.Peek(productsPage1)
		require.True(t, ok)
		assert.Equal(t, 10, entry.SubscriberCount)
	})
}

func TestCache_SubscribeReturnsCurrentSnapshot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)
		defer c.Close()

		first, snap, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLoading, snap.Status)
		assert.Nil(t, snap.Data)
		assert.Equal(t, 1, snap.SubscriberCount)

		api.next(t).reply <- result{data: 42}
		nextUpdate(t, first)

		second, snap, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		defer second.Unsubscribe()
		assert.Equal(t, domain.StatusSuccess, snap.Status)
		assert.Equal(t, 42, snap.Data)
		assert.Equal(t, 2, snap.SubscriberCount)

		synctest.Wait()
		assert.Zero(t, api.pending(), "fresh entry must not refetch")
		assertNoUpdate(t, first)
	})
}

func TestCache_FreshHitsKeepLastFetchedAt(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t, querycache.WithStaleTime(30*time.Second))
		defer c.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := c.Fetch(t.Context(), productsPage1, api.fetch)
			assert.NoError(t, err)
		}()
		api.next(t).reply <- result{data: "v1"}
		<-done

		before, ok := c.Peek(productsPage1)
		require.True(t, ok)

		for range 5 {
			time.Sleep(time.Second)
			sub, snap, err := c.Subscribe(productsPage1, api.fetch)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusSuccess, snap.Status)
			sub.Unsubscribe()
		}

		after, ok := c.Peek(productsPage1)
		require.True(t, ok)
		assert.Equal(t, before.LastFetchedAt, after.LastFetchedAt)
		assert.Zero(t, api.pending())
	})
}

func TestCache_RevalidatesAfterStaleTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t, querycache.WithStaleTime(30*time.Second))
		defer c.Close()

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		api.next(t).reply <- result{data: "old"}
		nextUpdate(t, sub)
		sub.Unsubscribe()

		time.Sleep(31 * time.Second)

		sub, snap, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		defer sub.Unsubscribe()
		assert.Equal(t, domain.StatusLoading, snap.Status)
		assert.Equal(t, "old", snap.Data, "data from the previous fetch is kept while loading")

		api.next(t).reply <- result{data: "new"}
		got := nextUpdate(t, sub)
		assert.Equal(t, domain.StatusSuccess, got.Status)
		assert.Equal(t, "new", got.Data)
	})
}

func TestCache_DiscardsResultOfSupersededFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		api.ignoreCancel = true

		ctrl := gomock.NewController(t)
		mockLogger := mocks.NewMockLogger(ctrl)
		mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
		mockMetrics := mocks.NewMockCacheMetrics(ctrl)
		mockMetrics.EXPECT().CacheMiss("products").Times(1)
		mockMetrics.EXPECT().Invalidated(1).Times(1)
		mockMetrics.EXPECT().FetchCompleted("products", gomock.Any(), nil).Times(1)
		mockMetrics.EXPECT().FetchDiscarded("products").Times(1)

		c := querycache.New(mockLogger, telemetry.NewNoOpTracer(), mockMetrics)
		defer c.Close()

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		defer sub.Unsubscribe()
		first := api.next(t)

		require.Equal(t, 1, c.Invalidate(domain.PatternFor("products")))
		loading := nextUpdate(t, sub)
		assert.Equal(t, domain.StatusLoading, loading.Status)
		assert.True(t, loading.Stale)
		second := api.next(t)

		assert.Error(t, first.ctx.Err(), "superseded fetch is cancelled")

		second.reply <- result{data: "B"}
		got := nextUpdate(t, sub)
		assert.Equal(t, domain.StatusSuccess, got.Status)
		assert.Equal(t, "B", got.Data)
		assert.False(t, got.Stale)

		first.reply <- result{data: "A"}
		assertNoUpdate(t, sub)

		entry, _ := c.Peek(productsPage1)
		assert.Equal(t, "B", entry.Data)
	})
}

func TestCache_InvalidateMarksUnsubscribedEntriesStale(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)
		defer c.Close()

		watched, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		defer watched.Unsubscribe()
		api.next(t).reply <- result{data: []string{"drill"}}
		nextUpdate(t, watched)

		page2 := domain.NewQueryKey("products", domain.Params{"page": "2", "limit": "10"})
		idle, _, err := c.Subscribe(page2, api.fetch)
		require.NoError(t, err)
		api.next(t).reply <- result{data: []string{"saw"}}
		nextUpdate(t, idle)
		idle.Unsubscribe()

		users := domain.NewQueryKey("users", domain.Params{"page": "1"})
		other, _, err := c.Subscribe(users, api.fetch)
		require.NoError(t, err)
		defer other.Unsubscribe()
		api.next(t).reply <- result{data: "users"}
		nextUpdate(t, other)

		assert.Equal(t, 2, c.Invalidate(domain.PatternFor("products")))

		loading := nextUpdate(t, watched)
		assert.Equal(t, domain.StatusLoading, loading.Status)
		assert.Equal(t, []string{"drill"}, loading.Data)
		api.next(t).reply <- result{data: []string{"drill", "hammer"}}
		got := nextUpdate(t, watched)
		assert.Equal(t, domain.StatusSuccess, got.Status)
		assert.Equal(t, []string{"drill", "hammer"}, got.Data)

		synctest.Wait()
		assert.Zero(t, api.pending(), "entries without subscribers refetch lazily")
		assertNoUpdate(t, other)

		stale, ok := c.Peek(page2)
		require.True(t, ok)
		assert.True(t, stale.Stale)

		sub, snap, err := c.Subscribe(page2, api.fetch)
		require.NoError(t, err)
		defer sub.Unsubscribe()
		assert.Equal(t, domain.StatusLoading, snap.Status, "stale entry refetches inside the fresh window")
		api.next(t).reply <- result{data: []string{"saw", "chisel"}}
		nextUpdate(t, sub)
	})
}

func TestCache_InvalidateDiscardsFetchStartedBeforeTheWrite(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		api.ignoreCancel = true
		c := newCache(t)
		defer c.Close()

		page2 := domain.NewQueryKey("products", domain.Params{"page": "2", "limit": "10"})
		sub, snap, err := c.Subscribe(page2, api.fetch)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLoading, snap.Status)
		old := api.next(t)
		sub.Unsubscribe()

		assert.Equal(t, 1, c.Invalidate(domain.PatternFor("products")))
		old.reply <- result{data: "pre-mutation"}
		synctest.Wait()

		peeked, ok := c.Peek(page2)
		require.True(t, ok)
		assert.True(t, peeked.Stale)
		assert.Equal(t, domain.StatusIdle, peeked.Status)
		assert.Nil(t, peeked.Data)

		sub, snap, err = c.Subscribe(page2, api.fetch)
		require.NoError(t, err)
		defer sub.Unsubscribe()
		assert.Equal(t, domain.StatusLoading, snap.Status, "invalidated entry revalidates on next subscribe")
		synctest.Wait()
		require.Equal(t, 1, api.pending())
		api.next(t).reply <- result{data: "post-mutation"}
		got := nextUpdate(t, sub)
		assert.Equal(t, domain.StatusSuccess, got.Status)
		assert.Equal(t, "post-mutation", got.Data)
		assert.False(t, got.Stale)
	})
}

func TestCache_EvictsAfterGCTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t, querycache.WithGCTime(time.Minute), querycache.WithStaleTime(time.Hour))
		defer c.Close()

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		api.next(t).reply <- result{data: "v1"}
		nextUpdate(t, sub)
		sub.Unsubscribe()
		sub.Unsubscribe()

		time.Sleep(59 * time.Second)
		synctest.Wait()
		assert.Equal(t, 1, c.Len())

		// Resubscribing inside the window cancels the pending eviction.
		sub, _, err = c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		time.Sleep(2 * time.Minute)
		synctest.Wait()
		assert.Equal(t, 1, c.Len())

		sub.Unsubscribe()
		time.Sleep(time.Minute + time.Second)
		synctest.Wait()
		assert.Zero(t, c.Len())
		_, ok := c.Peek(productsPage1)
		assert.False(t, ok)
	})
}

func TestCache_UnsubscribeDoesNotCancelFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t, querycache.WithGCTime(time.Minute))
		defer c.Close()

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		pending := api.next(t)
		sub.Unsubscribe()

		_, ok := <-sub.Updates()
		assert.False(t, ok, "updates close on unsubscribe")
		require.NoError(t, pending.ctx.Err())

		pending.reply <- result{data: "applied"}
		synctest.Wait()

		entry, ok := c.Peek(productsPage1)
		require.True(t, ok)
		assert.Equal(t, domain.StatusSuccess, entry.Status)
		assert.Equal(t, "applied", entry.Data)
		assert.Zero(t, entry.SubscriberCount)
	})
}

func TestCache_DropsLateResultOfEvictedEntry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		api.ignoreCancel = true
		c := newCache(t, querycache.WithGCTime(time.Second))
		defer c.Close()

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		pending := api.next(t)
		sub.Unsubscribe()

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Zero(t, c.Len())
		assert.Error(t, pending.ctx.Err(), "evicted entry cancels its fetch")

		pending.reply <- result{data: "late"}
		synctest.Wait()
		assert.Zero(t, c.Len())
	})
}

func TestCache_ErrorState(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)
		defer c.Close()

		done := make(chan error, 1)
		go func() {
			_, err := c.Fetch(t.Context(), productsPage1, api.fetch)
			done <- err
		}()
		api.next(t).reply <- result{err: domain.NewAPIError(503, "unavailable")}

		err := <-done
		require.ErrorIs(t, err, domain.ErrAPI)

		entry, ok := c.Peek(productsPage1)
		require.True(t, ok)
		assert.Equal(t, domain.StatusError, entry.Status)
		require.ErrorIs(t, entry.Err, domain.ErrAPI)

		sub, snap, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		defer sub.Unsubscribe()
		assert.Equal(t, domain.StatusLoading, snap.Status, "failed entries refetch on subscribe")

		api.next(t).reply <- result{data: "recovered"}
		got := nextUpdate(t, sub)
		assert.Equal(t, domain.StatusSuccess, got.Status)
		assert.NoError(t, got.Err)
	})
}

func TestCache_UpdatesArriveInOrderForSlowReaders(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)
		defer c.Close()

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		defer sub.Unsubscribe()

		api.next(t).reply <- result{data: 1}
		synctest.Wait()
		for i := 2; i <= 3; i++ {
			require.True(t, c.Refetch(productsPage1))
			api.next(t).reply <- result{data: i}
			synctest.Wait()
		}

		var got []string
		for range 5 {
			e := nextUpdate(t, sub)
			if e.Status == domain.StatusSuccess {
				got = append(got, fmt.Sprintf("%s:%v", e.Status, e.Data))
			} else {
				got = append(got, e.Status.String())
			}
		}
		assert.Equal(t, []string{"success:1", "loading", "success:2", "loading", "success:3"}, got)
	})
}

func TestCache_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)

		sub, _, err := c.Subscribe(productsPage1, api.fetch)
		require.NoError(t, err)
		pending := api.next(t)

		c.Close()
		c.Close()

		require.Error(t, pending.ctx.Err())
		_, ok := <-sub.Updates()
		assert.False(t, ok)
		sub.Unsubscribe()

		_, _, err = c.Subscribe(productsPage1, api.fetch)
		require.ErrorIs(t, err, domain.ErrCacheClosed)
		_, err = c.Fetch(t.Context(), productsPage1, api.fetch)
		require.ErrorIs(t, err, domain.ErrCacheClosed)
		assert.Zero(t, c.Invalidate(domain.PatternFor("products")))
		assert.False(t, c.Refetch(productsPage1))
		assert.Zero(t, c.Len())
	})
}

func TestCache_FetchHonoursContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api := newFakeAPI()
		c := newCache(t)
		defer c.Close()

		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		defer cancel()

		_, err := c.Fetch(ctx, productsPage1, api.fetch)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		// The shared fetch keeps running for other readers.
		pending := api.next(t)
		require.NoError(t, pending.ctx.Err())
		pending.reply <- result{data: "ok"}
	})
}

func TestGet(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := newCache(t)
		defer c.Close()

		got, err := querycache.Get(t.Context(), c, productsPage1, func(context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)

		_, err = querycache.Get(t.Context(), c, productsPage1, func(context.Context) (string, error) {
			return "never called", nil
		})
		require.ErrorIs(t, err, domain.ErrUnexpectedData)
	})
}

func TestCache_SubscribeWithoutFetcher(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := newCache(t)
		defer c.Close()

		_, _, err := c.Subscribe(productsPage1, nil)
		require.ErrorIs(t, err, domain.ErrMissingFetcher)
		assert.Zero(t, c.Len())
		assert.False(t, c.Refetch(productsPage1))
	})
}
