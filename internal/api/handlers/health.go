// Package handlers implements HTTP handlers for the price-compare BFF.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/price-compare/internal/gateway"
)

// BackendProber probes the search backend's health endpoint.
type BackendProber interface {
	Health(ctx context.Context) (*gateway.HealthStatus, time.Duration, error)
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	backend BackendProber
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(b BackendProber) *HealthHandler {
	return &HealthHandler{backend: b}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the search backend reports healthy, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	status, _, err := h.backend.Health(c.Request().Context())
	if err != nil || !status.Healthy() {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
