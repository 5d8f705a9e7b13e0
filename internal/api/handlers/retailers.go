package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-compare/internal/present"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// RetailerCache serves the last retailer list fetched by the scheduler.
type RetailerCache interface {
	Retailers() ([]domain.Retailer, time.Time)
}

// RetailerSource fetches retailers live when the cache is still empty.
type RetailerSource interface {
	Retailers(ctx context.Context) ([]domain.Retailer, error)
}

// RetailersHandler serves the retailer list.
type RetailersHandler struct {
	cache  RetailerCache
	source RetailerSource
}

// NewRetailersHandler creates a new RetailersHandler.
func NewRetailersHandler(cache RetailerCache, source RetailerSource) *RetailersHandler {
	return &RetailersHandler{cache: cache, source: source}
}

// RetailersInput holds the query parameters for the retailer list.
type RetailersInput struct {
	Language string `query:"lang" enum:"ar,en" default:"ar" doc:"Display name language"`
}

// RetailerView is a retailer with its display name resolved.
type RetailerView struct {
	domain.Retailer
	Display string `json:"display_name"`
}

// RetailersOutput is the response body for the retailer list.
type RetailersOutput struct {
	Body struct {
		Retailers []RetailerView `json:"retailers"`
		UpdatedAt *time.Time     `json:"updated_at,omitempty" doc:"When the cached list was fetched; absent for a live fetch"`
	}
}

// List returns the cached retailer list, falling back to a live backend
// call before the first scheduled refresh has completed.
func (h *RetailersHandler) List(ctx context.Context, input *RetailersInput) (*RetailersOutput, error) {
	lang := domain.ParseLanguage(input.Language)
	out := &RetailersOutput{}

	retailers, updatedAt := h.cache.Retailers()
	if updatedAt.IsZero() {
		live, err := h.source.Retailers(ctx)
		if err != nil {
			msg := present.Describe(err, lang)
			return nil, huma.Error502BadGateway(msg.Title, err)
		}
		retailers = live
	} else {
		out.Body.UpdatedAt = &updatedAt
	}

	out.Body.Retailers = make([]RetailerView, 0, len(retailers))
	for i := range retailers {
		out.Body.Retailers = append(out.Body.Retailers, RetailerView{
			Retailer: retailers[i],
			Display:  retailers[i].DisplayName(lang),
		})
	}
	return out, nil
}

// RegisterRetailerRoutes registers retailer endpoints with the Huma API.
func RegisterRetailerRoutes(api huma.API, h *RetailersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-retailers",
		Method:      http.MethodGet,
		Path:        "/api/v1/retailers",
		Summary:     "List retailers",
		Description: "Returns the retailers the backend searches, from a periodically refreshed cache.",
		Tags:        []string{"retailers"},
		Errors:      []int{http.StatusBadGateway},
	}, h.List)
}
