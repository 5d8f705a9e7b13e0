// Package history keeps the user's recent searches: most recent first,
// case-insensitively unique, at most MaxEntries long. Persistence failures
// never reach the caller; they are logged and the operation is skipped.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/donaldgifford/price-compare/internal/metrics"
	"github.com/donaldgifford/price-compare/internal/storage"
)

// Key is the storage key holding the JSON array of recent searches. Lists
// kept for a specific client live under Key + ":" + client id.
const Key = "waffar_search_history"

// MaxEntries caps the recent-search list.
const MaxEntries = 10

// Store reads and writes one recent-search list.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
	key     string
	mu      *sync.Mutex
}

// New creates a Store over s using the single-user Key.
func New(s storage.Storage, logger *slog.Logger) *Store {
	return &Store{storage: s, logger: logger, key: Key, mu: &sync.Mutex{}}
}

// ClientKey returns the storage key of client's list.
func ClientKey(client string) string {
	return Key + ":" + client
}

// ForClient returns the list belonging to client. It shares h's storage and
// lock, so concurrent requests from one client never lose an entry.
func (h *Store) ForClient(client string) *Store {
	return &Store{storage: h.storage, logger: h.logger, key: ClientKey(client), mu: h.mu}
}

// List returns the recent searches, most recent first. A missing, unreadable
// or corrupt value yields an empty list.
func (h *Store) List(ctx context.Context) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.list(ctx)
}

func (h *Store) list(ctx context.Context) []string {
	raw, err := h.storage.Get(ctx, h.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}
	}
	if err != nil {
		h.logger.Warn("failed to load search history", "error", err)
		return []string{}
	}

	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		h.logger.Warn("failed to load search history", "error", err)
		return []string{}
	}
	if entries == nil {
		return []string{}
	}
	return entries
}

// Add records query as the most recent search. The query is trimmed and
// blank queries are ignored. Any existing entry equal to it ignoring case is
// replaced, and the list is truncated to MaxEntries.
func (h *Store) Add(ctx context.Context, query string) {
	q := strings.TrimSpace(query)
	if q == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	fold := cases.Fold()
	key := fold.String(q)

	next := make([]string, 0, MaxEntries)
	next = append(next, q)
	for _, e := range h.list(ctx) {
		if len(next) == MaxEntries {
			break
		}
		if fold.String(e) == key {
			continue
		}
		next = append(next, e)
	}

	raw, err := json.Marshal(next)
	if err != nil {
		h.writeFailed(err)
		return
	}
	if err := h.storage.Set(ctx, h.key, raw); err != nil {
		h.writeFailed(err)
	}
}

// Clear removes every recent search.
func (h *Store) Clear(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.storage.Delete(ctx, h.key); err != nil {
		h.writeFailed(err)
	}
}

func (h *Store) writeFailed(err error) {
	metrics.HistoryWriteFailuresTotal.Inc()
	h.logger.Warn("failed to save search history", "error", err)
}
