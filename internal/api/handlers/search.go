package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-compare/internal/present"
	"github.com/donaldgifford/price-compare/internal/session"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// SearchHandler runs one search per request and returns the derived view.
type SearchHandler struct {
	searcher session.Searcher
	history  HistoryStore
	log      *slog.Logger
}

// NewSearchHandler creates a new SearchHandler. history may be nil.
func NewSearchHandler(searcher session.Searcher, history HistoryStore, log *slog.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, history: history, log: log}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	ClientInput

	Body struct {
		Query    string           `json:"query" minLength:"1" maxLength:"200" doc:"Product search query" example:"أرز"`
		Language string           `json:"language,omitempty" enum:"ar,en" default:"ar" doc:"Result language"`
		Criteria *domain.Criteria `json:"criteria,omitempty" doc:"Filter and sort criteria; derived from the results when omitted"`
	}
}

// SearchView is a session view plus presentation text.
type SearchView struct {
	session.View

	Heading  string              `json:"heading,omitempty"`
	Empty    *present.EmptyState `json:"empty,omitempty"`
	Filtered *present.EmptyState `json:"filtered,omitempty"`
	Error    *present.Message    `json:"error,omitempty"`
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body SearchView
}

// Search queries the backend and returns filtered, sorted rows. Backend
// failures are reported in the body's error field with a 200 status so the
// client renders a single message.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	lang := domain.ParseLanguage(input.Body.Language)

	opts := []session.Option{
		session.WithLanguage(lang),
		session.WithLogger(h.log),
	}
	if h.history != nil && input.ClientID != "" {
		opts = append(opts, session.WithHistory(h.history.ForClient(input.ClientID)))
	}
	if input.Body.Criteria != nil {
		opts = append(opts, session.WithCriteria(*input.Body.Criteria))
	}

	s := session.New(h.searcher, opts...)
	err := s.Search(ctx, input.Body.Query)
	if errors.Is(err, session.ErrSuperseded) {
		// Never happens with a per-request session.
		return nil, huma.Error500InternalServerError("search superseded")
	}

	out := &SearchOutput{}
	out.Body.View = s.View()

	switch {
	case err != nil:
		msg := present.Describe(err, lang)
		out.Body.Error = &msg
	case out.Body.Total == 0:
		empty := present.Empty(lang)
		out.Body.Empty = &empty
	default:
		out.Body.Heading = present.ResultsHeading(out.Body.Query, out.Body.Total, lang)
		if len(out.Body.Rows) == 0 {
			none := present.NoMatches(lang)
			out.Body.Filtered = &none
		}
	}

	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-products",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search products across retailers",
		Description: "Runs a search against the backend and returns rows filtered and sorted by the given criteria, with the cheapest in-stock offer flagged.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.Search)
}
