package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-compare/internal/api"
	"github.com/donaldgifford/price-compare/internal/api/handlers"
	"github.com/donaldgifford/price-compare/internal/gateway"
	"github.com/donaldgifford/price-compare/internal/history"
	"github.com/donaldgifford/price-compare/internal/refresh"
	"github.com/donaldgifford/price-compare/internal/storage"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Query == "slow down" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"detail":"too many requests"}`))
			return
		}
		_, _ = w.Write([]byte(`{"products":[
			{"name":"سكر أبيض 1 كجم","retailer":"Carrefour","price":32.5,"in_stock":true,"url":"https://c.example/1"},
			{"name":"سكر أبيض 1 كجم","retailer":"Spinneys","price":29.9,"in_stock":true,"url":"https://s.example/1"}
		],"total_results":2}`))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","timestamp":"2026-10-19T10:00:00Z"}`))
	})
	mux.HandleFunc("GET /retailers", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"retailers":[{"name":"Carrefour","status":"active"}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T) (*httptest.Server, *history.Store) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	backend := newBackend(t)
	hist := history.New(storage.NewMemory(), logger)

	e := api.NewServer(api.Deps{
		Backend:   gateway.New(backend.URL, gateway.WithLogger(logger)),
		History:   hist,
		Retailers: &refresh.Cache{},
		Logger:    logger,
		Version:   "test",
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, hist
}

func postSearch(t *testing.T, url, clientID, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url+"/api/v1/search", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if clientID != "" {
		req.Header.Set(handlers.ClientIDHeader, clientID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestServer_SearchRecordsHistory(t *testing.T) {
	t.Parallel()

	srv, hist := newServer(t)

	resp := postSearch(t, srv.URL, "web-1", `{"query":"  sugar ","language":"en"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(gateway.RequestIDHeader))

	var body struct {
		Status        string   `json:"status"`
		CheapestPrice *float64 `json:"cheapest_price"`
		Rows          []struct {
			Retailer string `json:"retailer"`
			Cheapest bool   `json:"cheapest"`
		} `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "success", body.Status)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "Spinneys", body.Rows[0].Retailer)
	assert.True(t, body.Rows[0].Cheapest)
	require.NotNil(t, body.CheapestPrice)
	assert.InDelta(t, 29.9, *body.CheapestPrice, 1e-9)

	assert.Equal(t, []string{"sugar"}, hist.ForClient("web-1").List(t.Context()))
	assert.Empty(t, hist.List(t.Context()))
}

func TestServer_BackendErrorView(t *testing.T) {
	t.Parallel()

	srv, hist := newServer(t)

	resp := postSearch(t, srv.URL, "web-1", `{"query":"slow down","language":"en"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Error  struct {
			Kind   string `json:"kind"`
			Action string `json:"action"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, string(gateway.KindRateLimited), body.Error.Kind)
	assert.Equal(t, "wait", body.Error.Action)
	assert.Empty(t, hist.ForClient("web-1").List(t.Context()))
}

func TestServer_OperationalRoutes(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/healthz", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{path: "/readyz", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{path: "/metrics", wantStatus: http.StatusOK, wantBody: "pcmp_"},
		{path: "/openapi.json", wantStatus: http.StatusOK, wantBody: "/api/v1/search"},
		{path: "/api/v1/retailers", wantStatus: http.StatusOK, wantBody: "Carrefour"},
		{path: "/api/v1/history", wantStatus: http.StatusOK, wantBody: `"searches"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var sb strings.Builder
			_, err = io.Copy(&sb, resp.Body)
			require.NoError(t, err)
			assert.Contains(t, sb.String(), tt.wantBody)
		})
	}
}
