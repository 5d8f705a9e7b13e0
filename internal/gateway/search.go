package gateway

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// QuickSearchMaxResults caps the lightweight preview search.
const QuickSearchMaxResults = 10

// Search posts one query to the backend. hints may be nil; set fields are
// forwarded and swapped price bounds are put in order. An empty or
// whitespace query fails with KindInvalidQuery without touching the network.
func (c *Client) Search(
	ctx context.Context,
	query string,
	hints *domain.SearchHints,
	lang domain.Language,
) (*domain.SearchResponse, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, &SearchError{Kind: KindInvalidQuery, Detail: "please enter a search query"}
	}

	req := domain.SearchRequest{
		Query:               q,
		Language:            lang,
		MaxResults:          c.maxResults,
		IncludeAlternatives: c.includeAlternatives,
	}
	if hints != nil {
		req.MinPrice, req.MaxPrice = hints.MinPrice, hints.MaxPrice
		if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
			req.MinPrice, req.MaxPrice = req.MaxPrice, req.MinPrice
		}
		if len(hints.Retailers) > 0 {
			req.PreferredRetailers = slices.Clone(hints.Retailers)
		}
	}

	return c.search(ctx, "search", &req)
}

// QuickSearch runs a small search without alternatives, for previews.
// Failures are logged and yield an empty list.
func (c *Client) QuickSearch(ctx context.Context, query string, lang domain.Language) []domain.Offer {
	q := strings.TrimSpace(query)
	if q == "" {
		return []domain.Offer{}
	}

	resp, err := c.search(ctx, "quick_search", &domain.SearchRequest{
		Query:      q,
		Language:   lang,
		MaxResults: QuickSearchMaxResults,
	})
	if err != nil {
		c.logger.Warn("quick search failed", "query", q, "error", err)
		return []domain.Offer{}
	}
	return resp.Products
}

func (c *Client) search(ctx context.Context, endpoint string, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	var resp domain.SearchResponse
	if err := c.do(ctx, endpoint, http.MethodPost, "/search", req, &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		resp.Products = []domain.Offer{}
	}
	return &resp, nil
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggestions returns backend query suggestions. Failures never surface:
// they are logged at warn and yield an empty list.
func (c *Client) Suggestions(ctx context.Context, query string, lang domain.Language) []string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("lang", string(lang))

	var resp suggestionsResponse
	if err := c.do(ctx, "suggestions", http.MethodGet, "/suggestions?"+v.Encode(), nil, &resp); err != nil {
		c.logger.Warn("search suggestions failed", "query", query, "error", err)
		return []string{}
	}
	if resp.Suggestions == nil {
		return []string{}
	}
	return resp.Suggestions
}

type popularResponse struct {
	PopularSearches []string `json:"popular_searches"`
}

// PopularSearches returns the backend's popular queries. Failures are
// swallowed like Suggestions.
func (c *Client) PopularSearches(ctx context.Context, lang domain.Language) []string {
	v := url.Values{}
	v.Set("lang", string(lang))

	var resp popularResponse
	if err := c.do(ctx, "popular_searches", http.MethodGet, "/popular-searches?"+v.Encode(), nil, &resp); err != nil {
		c.logger.Warn("popular searches failed", "error", err)
		return []string{}
	}
	if resp.PopularSearches == nil {
		return []string{}
	}
	return resp.PopularSearches
}

type retailersResponse struct {
	Retailers []domain.Retailer `json:"retailers"`
}

// Retailers returns the retailers the backend can search.
func (c *Client) Retailers(ctx context.Context) ([]domain.Retailer, error) {
	var resp retailersResponse
	if err := c.do(ctx, "retailers", http.MethodGet, "/retailers", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Retailers == nil {
		resp.Retailers = []domain.Retailer{}
	}
	return resp.Retailers, nil
}

// HealthStatus is the backend's /health payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Healthy reports whether the backend declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}

// Health probes the backend /health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, time.Duration, error) {
	start := time.Now()
	var resp HealthStatus
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, time.Since(start), err
	}
	return &resp, time.Since(start), nil
}
