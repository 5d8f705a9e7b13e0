// Package gateway is the single point of contact with the search backend.
// It builds requests, throttles them, and normalizes every failure into a
// *SearchError with a closed Kind.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/donaldgifford/price-compare/internal/metrics"
)

// Defaults applied by New.
const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxResults          = 50
	DefaultSlowRequestDuration = 5 * time.Second

	// RequestIDHeader carries the per-call correlation id.
	RequestIDHeader = "X-Request-ID"
)

const tracerName = "github.com/donaldgifford/price-compare/internal/gateway"

type requestIDKey struct{}

// ContextWithRequestID makes outgoing backend calls reuse id instead of
// minting their own.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored by ContextWithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client talks to the search backend over HTTP.
type Client struct {
	baseURL             string
	httpClient          *http.Client
	limiter             *rate.Limiter
	logger              *slog.Logger
	tracer              trace.Tracer
	maxResults          int
	includeAlternatives bool
	slowThreshold       time.Duration
}

// New creates a gateway client targeting the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter:             rate.NewLimiter(rate.Inf, 0),
		logger:              slog.New(slog.DiscardHandler),
		tracer:              otel.Tracer(tracerName),
		maxResults:          DefaultMaxResults,
		includeAlternatives: true,
		slowThreshold:       DefaultSlowRequestDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its Timeout is the client-side
// deadline applied to every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout overrides the client-side timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit throttles outgoing calls to perSecond with the given burst.
// A non-positive rate disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithLogger sets the logger used for slow-request and swallowed-failure
// warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMaxResults sets max_results on search requests.
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithIncludeAlternatives sets include_alternatives on search requests.
func WithIncludeAlternatives(b bool) Option {
	return func(c *Client) {
		c.includeAlternatives = b
	}
}

// WithSlowRequestThreshold sets the duration above which a call is logged
// as slow.
func WithSlowRequestThreshold(d time.Duration) Option {
	return func(c *Client) {
		c.slowThreshold = d
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes a 2xx JSON body into dst. Any failure is
// returned as a *SearchError.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, dst any) (err error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx, span := c.tracer.Start(ctx, "gateway."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("backend.endpoint", endpoint),
			attribute.String("request.id", requestID),
		),
	)
	start := time.Now()

	defer func() {
		elapsed := time.Since(start)
		outcome := "success"
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()

		metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		if c.slowThreshold > 0 && elapsed > c.slowThreshold {
			metrics.BackendSlowRequestsTotal.WithLabelValues(endpoint).Inc()
			c.logger.Warn("slow backend request",
				"endpoint", endpoint,
				"path", path,
				"duration", elapsed,
				"request_id", requestID,
			)
		}
	}()

	if werr := c.limiter.Wait(ctx); werr != nil {
		if ctx.Err() != nil {
			return fromTransport(ctx, ctx.Err())
		}
		// The limiter refuses waits that would overrun the context deadline.
		return &SearchError{Kind: KindClientTimeout, Err: werr}
	}

	var bodyReader io.Reader
	if body != nil {
		data, merr := json.Marshal(body)
		if merr != nil {
			return &SearchError{Kind: KindUnknownError, Err: fmt.Errorf("marshaling request body: %w", merr)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, rerr := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if rerr != nil {
		return &SearchError{Kind: KindUnknownError, Err: fmt.Errorf("creating request: %w", rerr)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, derr := c.httpClient.Do(req)
	if derr != nil {
		return fromTransport(ctx, derr)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, berr := io.ReadAll(resp.Body)
	if berr != nil {
		return fromTransport(ctx, fmt.Errorf("reading response body: %w", berr))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fromStatus(resp.StatusCode, errorDetail(respBody))
	}

	if dst != nil {
		if uerr := json.Unmarshal(respBody, dst); uerr != nil {
			return &SearchError{
				Kind:   KindUnknownError,
				Status: resp.StatusCode,
				Err:    fmt.Errorf("decoding response: %w", uerr),
			}
		}
	}

	return nil
}

// errorDetail extracts a human-readable "detail" field from an error body.
// Validation errors carry a list of objects rather than a string; those are
// left to the Kind's own message.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
