package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIDHeader identifies the browser or device whose recent searches a
// request reads or writes. Requests without it have no history.
const ClientIDHeader = "X-Client-ID"

// HistoryList is one client's recent-search list.
type HistoryList interface {
	List(ctx context.Context) []string
	Add(ctx context.Context, query string)
	Clear(ctx context.Context)
}

// HistoryStore hands out per-client recent-search lists.
type HistoryStore interface {
	ForClient(id string) HistoryList
}

// HistoryHandler exposes recent searches.
type HistoryHandler struct {
	store HistoryStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(s HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// ClientInput carries the client identity header.
type ClientInput struct {
	ClientID string `header:"X-Client-ID" maxLength:"64" pattern:"^[A-Za-z0-9_-]*$" doc:"Opaque client identifier that owns the recent searches"`
}

// HistoryOutput is the response body for the history list.
type HistoryOutput struct {
	Body struct {
		Searches []string `json:"searches" doc:"Most recent first, at most ten"`
	}
}

// List returns the caller's recent searches. Storage failures and a missing
// client id yield an empty list.
func (h *HistoryHandler) List(ctx context.Context, input *ClientInput) (*HistoryOutput, error) {
	out := &HistoryOutput{}
	out.Body.Searches = []string{}
	if h.store != nil && input.ClientID != "" {
		out.Body.Searches = h.store.ForClient(input.ClientID).List(ctx)
	}
	return out, nil
}

// Clear removes the caller's recent searches.
func (h *HistoryHandler) Clear(ctx context.Context, input *ClientInput) (*struct{}, error) {
	if h.store != nil && input.ClientID != "" {
		h.store.ForClient(input.ClientID).Clear(ctx)
	}
	return nil, nil
}

// RegisterHistoryRoutes registers history endpoints with the Huma API.
func RegisterHistoryRoutes(api huma.API, h *HistoryHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "List recent searches",
		Description: "Returns the recent searches of the client named by " + ClientIDHeader + ".",
		Tags:        []string{"history"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "clear-history",
		Method:        http.MethodDelete,
		Path:          "/api/v1/history",
		Summary:       "Clear recent searches",
		Tags:          []string{"history"},
		DefaultStatus: http.StatusNoContent,
	}, h.Clear)
}
