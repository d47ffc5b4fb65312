package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/backoffice/cmd/backoffice/commands"
	"go.trai.ch/backoffice/internal/adapters/metrics"
	"go.trai.ch/backoffice/internal/app"
	"go.trai.ch/backoffice/internal/build"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type mockApp struct {
	configFunc func(opts app.Options) (domain.Config, error)
	openFunc   func(ctx context.Context, opts app.Options) (*app.Session, error)
}

func (m *mockApp) Config(opts app.Options) (domain.Config, error) {
	return m.configFunc(opts)
}

func (m *mockApp) Open(ctx context.Context, opts app.Options) (*app.Session, error) {
	return m.openFunc(ctx, opts)
}

// requestLog records the requests received by the test server.
type requestLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *requestLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// apiServer answers the products endpoints with a single product.
func apiServer(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	calls := &requestLog{}
	srv := httptest.NewServer(apiHandler(calls))
	t.Cleanup(srv.Close)
	return srv, calls
}

// flakyServer is apiServer with the connection of the first request dropped unanswered.
func flakyServer(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	calls := &requestLog{}
	next := apiHandler(calls)
	var dropped atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dropped.CompareAndSwap(false, true) {
			calls.add("dropped " + r.URL.RequestURI())
			if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
				_ = conn.Close()
			}
			return
		}
		next.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func apiHandler(calls *requestLog) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":"p1","sku":"DR-1","name":"Drill","costPrice":"10","sellingPrice":"19.99"}],
			"pagination":{"page":1,"limit":10,"total":1,"totalPages":1}}}`))
	})
	mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"p2","sku":"SAW-1","name":"Saw","costPrice":"4","sellingPrice":"9.5"}}`))
	})
	mux.HandleFunc("DELETE /api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.add(r.Method + " " + r.URL.RequestURI())
		mux.ServeHTTP(w, r)
	})
}

func newApp(t *testing.T, baseURL string) *mockApp {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	cfg := domain.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Token = "s3cret"
	loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(cfg, nil).AnyTimes()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	application := app.New(loader, log, metrics.NoOp{})
	return &mockApp{configFunc: application.Config, openFunc: application.Open}
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	cli := commands.New(a)
	cli.SetArgs(args)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_List(t *testing.T) {
	srv, calls := apiServer(t)
	a := newApp(t, srv.URL+"/api")

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, a, "products", "list", "--search", "drill", "--filter", "category=tools")
		require.NoError(t, err)
		assert.Contains(t, out, "products")
		assert.Contains(t, out, "page 1/1, 1 total")
		assert.Contains(t, out, "p1  Drill")
		assert.Contains(t, calls.all(), "GET /api/products?page=1&limit=10&search=drill&category=tools")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, a, "products", "list", "-o", "json")
		require.NoError(t, err)
		var page domain.Paginated[domain.Product]
		require.NoError(t, json.Unmarshal([]byte(out), &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, "19.99", page.Items[0].SellingPrice.String())
	})

	t.Run("malformed filter", func(t *testing.T) {
		_, err := execute(t, a, "products", "list", "--filter", "category")
		require.ErrorIs(t, err, domain.ErrInvalidFilter)
	})

	t.Run("unknown filter field", func(t *testing.T) {
		_, err := execute(t, a, "products", "list", "--filter", "colour=red")
		require.ErrorIs(t, err, domain.ErrInvalidFilter)
	})

	t.Run("page is not a filter", func(t *testing.T) {
		before := len(calls.all())
		_, err := execute(t, a, "products", "list", "--filter", "page=9")
		require.ErrorIs(t, err, domain.ErrInvalidFilter)
		assert.Len(t, calls.all(), before)
	})
}

func TestCommands_RetriesReadsOnNetworkFailure(t *testing.T) {
	srv, calls := flakyServer(t)
	out, err := execute(t, newApp(t, srv.URL+"/api"), "products", "list", "--retries", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "p1  Drill")
	assert.Equal(t, []string{
		"dropped /api/products?page=1&limit=10",
		"GET /api/products?page=1&limit=10",
	}, calls.all())

	srv, calls = flakyServer(t)
	_, err = execute(t, newApp(t, srv.URL+"/api"), "products", "list")
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Len(t, calls.all(), 1, "reads are not repeated by default")
}

func TestCommands_CreateAndDelete(t *testing.T) {
	srv, calls := apiServer(t)
	a := newApp(t, srv.URL+"/api")

	out, err := execute(t, a, "products", "create", "-o", "json",
		"--data", `{"sku":"SAW-1","name":"Saw","costPrice":"4","sellingPrice":"9.5"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "p2"`)

	out, err = execute(t, a, "products", "delete", "p2")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted products p2")

	assert.Equal(t, []string{"POST /api/products", "DELETE /api/products/p2"}, calls.all())

	_, err = execute(t, a, "products", "create")
	require.Error(t, err, "a payload is required")
}

func TestCommands_ValidationHappensBeforeRequests(t *testing.T) {
	srv, calls := apiServer(t)
	a := newApp(t, srv.URL+"/api")

	_, err := execute(t, a, "products", "get", " ")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = execute(t, a, "audit-logs", "delete", "a1")
	require.ErrorIs(t, err, domain.ErrUnsupportedOperation)

	_, err = execute(t, a, "users", "create", "--data", `{"email":"nobody"}`)
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, calls.all())
}

func TestCommands_ConfigShowRedactsToken(t *testing.T) {
	a := newApp(t, "https://api.example.com")

	out, err := execute(t, a, "config", "show", "-o", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cret")

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	api := view["api"].(map[string]any)
	assert.Equal(t, "********", api["token"])
	assert.Equal(t, "https://api.example.com", api["baseURL"])
	assert.Equal(t, "15s", api["timeout"])

	out, err = execute(t, a, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "staleTime: 30s")
}

func TestCommands_UnknownOutputFormat(t *testing.T) {
	a := newApp(t, "https://api.example.com")
	_, err := execute(t, a, "config", "show", "-o", "xml")
	require.ErrorIs(t, err, commands.ErrUsage)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "backoffice version "+build.Version))
}
