package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/price-compare/internal/gateway"
)

// healthPaths are logged on their first success and on every failure.
var healthPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs requests with structured fields.
// It generates a request ID if none is provided, echoes it in the response
// header and stores it on the request context so backend calls made while
// serving the request carry the same ID.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var healthLogged sync.Map // path -> *atomic.Bool

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(gateway.RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(gateway.RequestIDHeader, reqID)
			req := c.Request()
			c.SetRequest(req.WithContext(gateway.ContextWithRequestID(req.Context(), reqID)))

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			level := slog.LevelInfo

			if _, ok := healthPaths[path]; ok {
				if status >= http.StatusBadRequest {
					level = slog.LevelWarn
				} else {
					v, _ := healthLogged.LoadOrStore(path, &atomic.Bool{})
					if v.(*atomic.Bool).Swap(true) {
						return err
					}
				}
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
