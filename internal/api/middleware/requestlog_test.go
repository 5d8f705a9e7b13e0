package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-compare/internal/api"
	"github.com/donaldgifford/price-compare/internal/gateway"
	"github.com/donaldgifford/price-compare/internal/refresh"
)

// searchBackend stands in for the search API and remembers the request IDs
// it was sent.
type searchBackend struct {
	healthy atomic.Bool

	mu     sync.Mutex
	reqIDs []string
}

func (b *searchBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.reqIDs...)
}

func newSearchBackend(t *testing.T) (*searchBackend, *httptest.Server) {
	t.Helper()

	b := &searchBackend{}
	b.healthy.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.reqIDs = append(b.reqIDs, r.Header.Get(gateway.RequestIDHeader))
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"name":"سكر","retailer":"Carrefour","price":32.5,"in_stock":true}]}`))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if b.healthy.Load() {
			_, _ = w.Write([]byte(`{"status":"healthy","timestamp":"2026-10-19T10:00:00Z"}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

// newTestServer builds the BFF with every middleware logging into buf.
func newTestServer(t *testing.T, backendURL string, buf *bytes.Buffer) *echo.Echo {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(buf, nil))
	return api.NewServer(api.Deps{
		Backend:   gateway.New(backendURL, gateway.WithLogger(slog.New(slog.DiscardHandler))),
		Retailers: &refresh.Cache{},
		Logger:    logger,
		Version:   "test",
	})
}

func serve(e *echo.Echo, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestLog_SearchRequestIDReachesBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provided string
	}{
		{name: "caller supplied id is forwarded", provided: "req-search-42"},
		{name: "generated id is forwarded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend, srv := newSearchBackend(t)
			var buf bytes.Buffer
			e := newTestServer(t, srv.URL, &buf)

			header := http.Header{}
			if tt.provided != "" {
				header.Set(gateway.RequestIDHeader, tt.provided)
			}
			rec := serve(e, http.MethodPost, "/api/v1/search", `{"query":"سكر"}`, header)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			respID := rec.Header().Get(gateway.RequestIDHeader)
			require.NotEmpty(t, respID)
			if tt.provided != "" {
				assert.Equal(t, tt.provided, respID)
			}

			assert.Equal(t, []string{respID}, backend.seen())
			assert.Contains(t, buf.String(), "path=/api/v1/search")
			assert.Contains(t, buf.String(), "status=200")
			assert.Contains(t, buf.String(), "request_id="+respID)
		})
	}
}

func TestRequestLog_ReadyzLoggedOnceUntilBackendFails(t *testing.T) {
	t.Parallel()

	backend, srv := newSearchBackend(t)
	var buf bytes.Buffer
	e := newTestServer(t, srv.URL, &buf)

	rec := serve(e, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(buf.String(), "path=/readyz"))

	rec = serve(e, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(buf.String(), "path=/readyz"), "repeated success is quiet")

	backend.healthy.Store(false)
	for range 2 {
		rec = serve(e, http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "path=/readyz"), "every failure is logged")
	assert.Equal(t, 2, strings.Count(buf.String(), "level=WARN"))

	// Liveness keeps its own first-success state.
	rec = serve(e, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "path=/healthz")
}

func TestRequestLog_APIRoutesAlwaysLogged(t *testing.T) {
	t.Parallel()

	_, srv := newSearchBackend(t)
	var buf bytes.Buffer
	e := newTestServer(t, srv.URL, &buf)

	for range 2 {
		rec := serve(e, http.MethodGet, "/api/v1/history", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "path=/api/v1/history"))
}
