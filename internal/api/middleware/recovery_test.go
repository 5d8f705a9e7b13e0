package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		path     string
		reqID    string
		handler  echo.HandlerFunc
		wantCode int
		wantBody string
		wantLogs []string
	}{
		{
			name:     "passes through without logging",
			method:   http.MethodGet,
			path:     "/api/v1/retailers",
			handler:  func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
			wantCode: http.StatusOK,
			wantBody: "ok",
		},
		{
			name:   "string panic in search",
			method: http.MethodPost,
			path:   "/api/v1/search",
			reqID:  "req-search-7",
			handler: func(echo.Context) error {
				panic("nil session")
			},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error","request_id":"req-search-7"}`,
			wantLogs: []string{"panic recovered", "nil session", "method=POST", "path=/api/v1/search", "request_id=req-search-7"},
		},
		{
			name:   "error panic without request id",
			method: http.MethodDelete,
			path:   "/api/v1/history",
			handler: func(echo.Context) error {
				panic(errors.New("history store closed"))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error"}`,
			wantLogs: []string{"history store closed", "method=DELETE", "stack="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			e.Use(Recovery(logger))
			if tt.reqID != "" {
				e.Use(RequestLog(slog.New(slog.DiscardHandler)))
			}
			e.Add(tt.method, tt.path, tt.handler)

			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.reqID != "" {
				req.Header.Set("X-Request-ID", tt.reqID)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				assert.Empty(t, buf.String())
				return
			}
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			for _, want := range tt.wantLogs {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
