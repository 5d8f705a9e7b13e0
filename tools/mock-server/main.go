// Package main implements a mock search backend for local development.
// It serves a small grocery catalog from a JSON fixture and answers the
// same endpoints as the real price comparison backend, so the BFF and the
// CLI can run without scraping live retailers.
package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/price-compare/pkg/suggest"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

//go:embed testdata/catalog.json
var defaultCatalog []byte

// faultPrefix lets a query force an HTTP status, e.g. "status:429".
const faultPrefix = "status:"

type catalog struct {
	Retailers       []domain.Retailer `json:"retailers"`
	PopularSearches []string          `json:"popular_searches"`
	Products        []domain.Offer    `json:"products"`
}

func main() {
	port := flag.Int("port", 8000, "port to listen on")
	fixtureFile := flag.String("fixture", "", "path to catalog fixture (default: embedded catalog)")
	latency := flag.Duration("latency", 0, "delay added to every search")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cat, err := loadCatalog(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded catalog", "products", len(cat.Products), "retailers", len(cat.Retailers))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock search backend", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, cat, *latency)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, cat *catalog, latency time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", searchHandler(logger, cat, latency))
	mux.HandleFunc("GET /suggestions", suggestionsHandler(cat))
	mux.HandleFunc("GET /popular-searches", popularHandler(cat))
	mux.HandleFunc("GET /retailers", retailersHandler(cat))
	mux.HandleFunc("GET /health", healthHandler())
	return mux
}

func loadCatalog(path string) (*catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading fixture: %w", err)
		}
	}
	var cat catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &cat, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"request_id", r.Header.Get("X-Request-ID"),
		)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func searchHandler(logger *slog.Logger, cat *catalog, latency time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req domain.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed request body"})
			return
		}

		q := strings.ToLower(strings.TrimSpace(req.Query))
		if code, ok := strings.CutPrefix(q, faultPrefix); ok {
			status, err := strconv.Atoi(code)
			if err == nil && status >= 400 && status < 600 {
				writeJSON(w, status, map[string]string{"detail": "injected fault " + code})
				return
			}
		}
		if q == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]string{{"msg": "query must not be empty"}},
			})
			return
		}

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}

		matched := make([]domain.Offer, 0)
		for i := range cat.Products {
			p := &cat.Products[i]
			if !matches(p, q, &req) {
				continue
			}
			matched = append(matched, *p)
			if req.MaxResults > 0 && len(matched) == req.MaxResults {
				break
			}
		}

		retailers := make([]string, 0, len(cat.Retailers))
		for i := range cat.Retailers {
			if cat.Retailers[i].Status == domain.RetailerActive {
				retailers = append(retailers, cat.Retailers[i].Name)
			}
		}

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		writeJSON(w, http.StatusOK, domain.SearchResponse{
			RequestID:            requestID,
			Query:                req.Query,
			Products:             matched,
			TotalResults:         len(matched),
			SearchTimeMS:         int(time.Since(start).Milliseconds()),
			RetailersSearched:    retailers,
			AlternativesIncluded: req.IncludeAlternatives,
		})
		logger.Info("search", "query", q, "matched", len(matched))
	}
}

func matches(p *domain.Offer, q string, req *domain.SearchRequest) bool {
	text := strings.ToLower(p.Name + " " + p.Brand + " " + p.Category)
	if !strings.Contains(text, q) {
		return false
	}
	if req.MinPrice != nil && p.Price < *req.MinPrice {
		return false
	}
	if req.MaxPrice != nil && p.Price > *req.MaxPrice {
		return false
	}
	if len(req.PreferredRetailers) > 0 && !slices.Contains(req.PreferredRetailers, p.Retailer) {
		return false
	}
	return true
}

func suggestionsHandler(cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

		var names []string
		for i := range cat.Products {
			name := cat.Products[i].Name
			if q != "" && strings.Contains(strings.ToLower(name), q) {
				names = append(names, name)
			}
		}

		writeJSON(w, http.StatusOK, map[string][]string{
			"suggestions": suggest.Merge(names),
		})
	}
}

func popularHandler(cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		popular := cat.PopularSearches
		if popular == nil {
			popular = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"popular_searches": popular})
	}
}

func retailersHandler(cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]domain.Retailer{"retailers": cat.Retailers})
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
