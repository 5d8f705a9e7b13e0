package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-compare/internal/metrics"
	"github.com/donaldgifford/price-compare/pkg/suggest"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// minRemoteRunes is the shortest query forwarded to the backend for
// suggestions. Shorter queries only get local spelling corrections.
const minRemoteRunes = 3

// SuggestionSource is the subset of the gateway used for suggestions.
type SuggestionSource interface {
	Suggestions(ctx context.Context, query string, lang domain.Language) []string
	PopularSearches(ctx context.Context, lang domain.Language) []string
}

// SuggestionsHandler serves typeahead suggestions.
type SuggestionsHandler struct {
	source SuggestionSource
}

// NewSuggestionsHandler creates a new SuggestionsHandler.
func NewSuggestionsHandler(source SuggestionSource) *SuggestionsHandler {
	return &SuggestionsHandler{source: source}
}

// SuggestionsInput holds the query parameters for suggestions.
type SuggestionsInput struct {
	Query    string `query:"q" maxLength:"200" doc:"Partial query; popular searches are returned when empty"`
	Language string `query:"lang" enum:"ar,en" default:"ar" doc:"Suggestion language"`
}

// SuggestionsOutput is the response body for suggestions.
type SuggestionsOutput struct {
	Body struct {
		Suggestions []string `json:"suggestions" doc:"At most four suggestions, local corrections first"`
		Popular     bool     `json:"popular" doc:"True when the list is popular searches rather than completions"`
	}
}

// Suggestions merges local corrections with backend suggestions. Backend
// failures yield an empty remote list, never an error.
func (h *SuggestionsHandler) Suggestions(ctx context.Context, input *SuggestionsInput) (*SuggestionsOutput, error) {
	lang := domain.ParseLanguage(input.Language)
	q := strings.TrimSpace(input.Query)

	out := &SuggestionsOutput{}

	if q == "" {
		popular := h.source.PopularSearches(ctx, lang)
		out.Body.Suggestions = suggest.Merge(popular)
		out.Body.Popular = true
		metrics.SuggestionsServedTotal.WithLabelValues("popular").Add(float64(len(out.Body.Suggestions)))
		return out, nil
	}

	local := suggest.Suggest(q)
	var remote []string
	if utf8.RuneCountInString(q) >= minRemoteRunes {
		remote = h.source.Suggestions(ctx, q, lang)
	}

	merged := suggest.Merge(local, remote)
	out.Body.Suggestions = merged

	// Local entries come first in the merged list.
	fromLocal := min(len(local), len(merged))
	metrics.SuggestionsServedTotal.WithLabelValues("local").Add(float64(fromLocal))
	metrics.SuggestionsServedTotal.WithLabelValues("remote").Add(float64(len(merged) - fromLocal))
	return out, nil
}

// RegisterSuggestionRoutes registers suggestion endpoints with the Huma API.
func RegisterSuggestionRoutes(api huma.API, h *SuggestionsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-suggestions",
		Method:      http.MethodGet,
		Path:        "/api/v1/suggestions",
		Summary:     "Query suggestions",
		Description: "Returns spelling corrections and related searches for a partial query, or popular searches when the query is empty.",
		Tags:        []string{"search"},
	}, h.Suggestions)
}
