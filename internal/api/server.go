// Package api assembles the BFF HTTP server: Echo for transport and
// middleware, Huma for the typed JSON operations.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/price-compare/internal/api/handlers"
	mw "github.com/donaldgifford/price-compare/internal/api/middleware"
	"github.com/donaldgifford/price-compare/internal/history"
	"github.com/donaldgifford/price-compare/internal/session"
)

// Backend is everything the BFF asks of the search backend.
type Backend interface {
	session.Searcher
	handlers.SuggestionSource
	handlers.RetailerSource
	handlers.BackendProber
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Backend   Backend
	History   *history.Store
	Retailers handlers.RetailerCache
	Logger    *slog.Logger
	Version   string
}

// clientHistory hands out each client's own recent-search list.
type clientHistory struct {
	store *history.Store
}

func (c clientHistory) ForClient(id string) handlers.HistoryList {
	return c.store.ForClient(id)
}

// NewServer builds an Echo instance with every route registered.
func NewServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(d.Logger))
	e.Use(mw.RequestLog(d.Logger))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(d.Backend)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cfg := huma.DefaultConfig("price-compare", d.Version)
	cfg.Info.Description = "Compares grocery prices across retailers."
	humaAPI := humaecho.New(e, cfg)

	var hist handlers.HistoryStore
	if d.History != nil {
		hist = clientHistory{store: d.History}
	}

	handlers.RegisterSearchRoutes(humaAPI, handlers.NewSearchHandler(d.Backend, hist, d.Logger))
	handlers.RegisterSuggestionRoutes(humaAPI, handlers.NewSuggestionsHandler(d.Backend))
	handlers.RegisterRetailerRoutes(humaAPI, handlers.NewRetailersHandler(d.Retailers, d.Backend))
	handlers.RegisterHistoryRoutes(humaAPI, handlers.NewHistoryHandler(hist))

	return e
}
