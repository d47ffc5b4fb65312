package listview_test

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/backoffice/internal/adapters/metrics"
	"go.trai.ch/backoffice/internal/adapters/telemetry"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports/mocks"
	"go.trai.ch/backoffice/internal/engine/listview"
	"go.trai.ch/backoffice/internal/engine/mutation"
	"go.trai.ch/backoffice/internal/engine/querycache"
	"go.trai.ch/backoffice/internal/engine/resource"
	"go.uber.org/mock/gomock"
)

// fakeBackend serves paginated users and products from memory. A request whose
// query contains a gated substring waits until the gate is opened.
type fakeBackend struct {
	mu       sync.Mutex
	users    []domain.User
	products []domain.Product
	gates    map[string]chan struct{}
	requests []string
}

func (b *fakeBackend) gate(match string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gates == nil {
		b.gates = make(map[string]chan struct{})
	}
	ch := make(chan struct{})
	b.gates[match] = ch
	return ch
}

func (b *fakeBackend) Do(ctx context.Context, method, path string, _, out any) error {
	b.mu.Lock()
	b.requests = append(b.requests, method+" "+path)
	var wait chan struct{}
	for match, ch := range b.gates {
		if strings.Contains(path, match) {
			wait = ch
		}
	}
	b.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return domain.NewNetworkError(ctx.Err())
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	route, rawQuery, _ := strings.Cut(path, "?")
	query, _ := url.ParseQuery(rawQuery)

	switch {
	case method == http.MethodDelete && strings.HasPrefix(route, "/users/"):
		id := strings.TrimPrefix(route, "/users/")
		b.users = slices.DeleteFunc(b.users, func(u domain.User) bool { return u.ID == id })
		return nil
	case route == "/users":
		*out.(*domain.Paginated[domain.User]) = paginate(b.users, query)
		return nil
	case route == "/products":
		var matching []domain.Product
		for _, p := range b.products {
			if c := query.Get("category"); c == "" || p.Category == c {
				matching = append(matching, p)
			}
		}
		*out.(*domain.Paginated[domain.Product]) = paginate(matching, query)
		return nil
	}
	return domain.NewAPIError(http.StatusNotFound, "not found")
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func paginate[T any](items []T, query url.Values) domain.Paginated[T] {
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	total := len(items)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return domain.Paginated[T]{
		Items: slices.Clone(items[start:end]),
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
}

func newLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return mockLogger
}

func nextSnapshot(t *testing.T, v *listview.View) listview.Snapshot {
	t.Helper()
	select {
	case s, ok := <-v.Updates():
		require.True(t, ok, "updates closed")
		return s
	case <-time.After(time.Hour):
		t.Fatal("expected a snapshot")
		return listview.Snapshot{}
	}
}

// settle reads snapshots until one satisfies done.
func settle(t *testing.T, v *listview.View, done func(listview.Snapshot) bool) listview.Snapshot {
	t.Helper()
	for {
		s := nextSnapshot(t, v)
		if done(s) {
			return s
		}
	}
}

func success(s listview.Snapshot) bool {
	return s.Entry.Status == domain.StatusSuccess
}

func TestView_DiscardsSupersededFilterResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{products: []domain.Product{
			{ID: "p1", Name: "Drill", Category: "tools"},
			{ID: "p2", Name: "Apple", Category: "food"},
		}}
		log := newLogger(t)
		cache := querycache.New(log, telemetry.NewNoOpTracer(), metrics.NoOp{})
		defer cache.Close()

		products := resource.NewProducts(backend)
		v, err := listview.New(cache, listview.ForCollection(products.Collection), log, domain.PageState{PageSize: 10})
		require.NoError(t, err)
		defer v.Close()
		settle(t, v, success)

		releaseA := backend.gate("category=tools")
		require.NoError(t, v.SetFilter("category", "tools"))
		require.NoError(t, v.SetFilter("category", "food"))

		got := settle(t, v, success)
		page := got.Entry.Data.(domain.Paginated[domain.Product])
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Apple", page.Items[0].Name)

		close(releaseA)
		synctest.Wait()

		select {
		case s := <-v.Updates():
			t.Fatalf("snapshot of a superseded filter delivered: %+v", s)
		default:
		}
		current := v.Current()
		assert.Equal(t, "food", current.Entry.Key.Params["category"])
		assert.Equal(t, map[string]string{"category": "food"}, current.State.Filters)
		assert.Equal(t, 1, current.State.Page)
	})
}

func TestView_ReclampsPageAfterDelete(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{}
		for i := 1; i <= 11; i++ {
			backend.users = append(backend.users, domain.User{ID: "u" + strconv.Itoa(i)})
		}
		log := newLogger(t)
		cache := querycache.New(log, telemetry.NewNoOpTracer(), metrics.NoOp{})
		defer cache.Close()
		coord := mutation.New(cache, log, telemetry.NewNoOpTracer(), metrics.NoOp{})

		users := resource.NewUsers(backend)
		v, err := listview.New(cache, listview.ForCollection(users.Collection), log, domain.PageState{Page: 2, PageSize: 10})
		require.NoError(t, err)
		defer v.Close()

		last := settle(t, v, success)
		lastPage := last.Entry.Data.(domain.Paginated[domain.User])
		require.Equal(t, 2, lastPage.Pagination.TotalPages)
		require.Len(t, lastPage.Items, 1)

		_, err = coord.Execute(t.Context(), mutation.Request{
			Resource:  domain.ResourceUsers,
			Operation: domain.OpDelete,
			ID:        "u11",
			Affects:   domain.WriteAffects(domain.ResourceUsers),
			Perform: func(ctx context.Context) (any, error) {
				return nil, users.Delete(ctx, "u11")
			},
		})
		require.NoError(t, err)

		shrunk := settle(t, v, func(s listview.Snapshot) bool { return success(s) && s.Entry.Key.Params["page"] == "2" })
		assert.Equal(t, 1, shrunk.Entry.Data.(domain.Paginated[domain.User]).Pagination.TotalPages)

		moved := settle(t, v, func(s listview.Snapshot) bool { return success(s) && s.State.Page == 1 })
		page := moved.Entry.Data.(domain.Paginated[domain.User])
		assert.Len(t, page.Items, 10)
		assert.Equal(t, 1, page.Pagination.TotalPages)
		assert.Equal(t, 1, v.State().Page)
	})
}

func TestView_EmptyResultClampsToFirstPage(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{}
		log := newLogger(t)
		cache := querycache.New(log, telemetry.NewNoOpTracer(), metrics.NoOp{})
		defer cache.Close()

		v, err := listview.New(cache, listview.ForCollection(resource.NewUsers(backend).Collection), log,
			domain.PageState{Page: 4, PageSize: 10})
		require.NoError(t, err)
		defer v.Close()

		settle(t, v, func(s listview.Snapshot) bool { return success(s) && s.State.Page == 1 })
		assert.Equal(t, 1, v.State().Page)
	})
}

func TestView_SetPageAndInvalidFilter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{}
		for i := 1; i <= 25; i++ {
			backend.users = append(backend.users, domain.User{ID: "u" + strconv.Itoa(i)})
		}
		log := newLogger(t)
		cache := querycache.New(log, telemetry.NewNoOpTracer(), metrics.NoOp{})
		defer cache.Close()

		v, err := listview.New(cache, listview.ForCollection(resource.NewUsers(backend).Collection), log,
			domain.PageState{PageSize: 10})
		require.NoError(t, err)
		defer v.Close()
		settle(t, v, success)

		require.NoError(t, v.SetPage(3))
		got := settle(t, v, success)
		assert.Len(t, got.Entry.Data.(domain.Paginated[domain.User]).Items, 5)
		assert.Equal(t, 3, got.State.Page)

		err = v.SetFilter("isActive", "sometimes")
		require.ErrorIs(t, err, domain.ErrInvalidFilter)
		assert.Equal(t, 3, v.State().Page, "a rejected filter leaves the state alone")

		err = v.SetFilter("role", "pirate")
		require.ErrorIs(t, err, domain.ErrValidation)

		require.NoError(t, v.SetPage(1))
		cached := nextSnapshot(t, v)
		assert.Equal(t, domain.StatusSuccess, cached.Entry.Status, "page 1 is still cached and fresh")
	})
}

func TestView_PositionIsNotAFilter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{}
		for i := 1; i <= 25; i++ {
			backend.users = append(backend.users, domain.User{ID: "u" + strconv.Itoa(i)})
		}
		log := newLogger(t)
		cache := querycache.New(log, telemetry.NewNoOpTracer(), metrics.NoOp{})
		defer cache.Close()
		users := listview.ForCollection(resource.NewUsers(backend).Collection)

		_, err := listview.New(cache, users, log, domain.PageState{PageSize: 10, Filters: map[string]string{"page": "9"}})
		require.ErrorIs(t, err, domain.ErrInvalidFilter)

		v, err := listview.New(cache, users, log, domain.PageState{Page: 2, PageSize: 10})
		require.NoError(t, err)
		defer v.Close()
		settle(t, v, success)

		for _, field := range []string{"page", "limit"} {
			err = v.SetFilter(field, "9")
			require.ErrorIs(t, err, domain.ErrInvalidFilter)
		}
		assert.Equal(t, 2, v.State().Page)
		assert.Empty(t, v.State().Filters)

		require.NoError(t, v.SetPage(3))
		got := settle(t, v, func(s listview.Snapshot) bool { return success(s) && s.State.Page == 3 })
		assert.Equal(t, "3", got.Entry.Key.Params["page"])
		assert.Len(t, got.Entry.Data.(domain.Paginated[domain.User]).Items, 5)
	})
}

func TestView_RefetchInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &fakeBackend{users: []domain.User{{ID: "u1"}}}
		log := newLogger(t)
		cache := querycache.New(log, telemetry.NewNoOpTracer(), metrics.NoOp{})
		defer cache.Close()

		v, err := listview.New(cache, listview.ForCollection(resource.NewUsers(backend).Collection), log,
			domain.PageState{PageSize: 10}, listview.WithRefetchInterval(10*time.Second))
		require.NoError(t, err)
		settle(t, v, success)
		require.Equal(t, 1, backend.requestCount())

		time.Sleep(25 * time.Second)
		synctest.Wait()
		assert.Equal(t, 3, backend.requestCount())

		v.Close()
		v.Close()
		for range v.Updates() {
		}
		time.Sleep(time.Minute)
		synctest.Wait()
		assert.Equal(t, 3, backend.requestCount(), "polling stops on close")
		require.ErrorIs(t, v.SetPage(2), domain.ErrCacheClosed)
	})
}
