package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Kind classifies a failed backend call. The set is closed: every error the
// gateway returns from Search carries exactly one of these.
type Kind string

// Kind constants.
const (
	KindInvalidQuery    Kind = "invalid_query"
	KindBadRequest      Kind = "bad_request"
	KindNotFound        Kind = "not_found"
	KindUpstreamTimeout Kind = "upstream_timeout"
	KindRateLimited     Kind = "rate_limited"
	KindServerError     Kind = "server_error"
	KindNetworkError    Kind = "network_error"
	KindClientTimeout   Kind = "client_timeout"
	KindUnknownError    Kind = "unknown_error"
)

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrInvalidQuery    = errors.New("invalid query")
	ErrBadRequest      = errors.New("invalid request")
	ErrNotFound        = errors.New("service not found")
	ErrUpstreamTimeout = errors.New("search timeout: retailers may be temporarily unavailable")
	ErrRateLimited     = errors.New("too many requests")
	ErrServerError     = errors.New("server error")
	ErrNetworkError    = errors.New("network error")
	ErrClientTimeout   = errors.New("request timed out")
	ErrUnknown         = errors.New("unexpected error")
)

var sentinels = map[Kind]error{
	KindInvalidQuery:    ErrInvalidQuery,
	KindBadRequest:      ErrBadRequest,
	KindNotFound:        ErrNotFound,
	KindUpstreamTimeout: ErrUpstreamTimeout,
	KindRateLimited:     ErrRateLimited,
	KindServerError:     ErrServerError,
	KindNetworkError:    ErrNetworkError,
	KindClientTimeout:   ErrClientTimeout,
	KindUnknownError:    ErrUnknown,
}

// Kinds returns every Kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindInvalidQuery,
		KindBadRequest,
		KindNotFound,
		KindUpstreamTimeout,
		KindRateLimited,
		KindServerError,
		KindNetworkError,
		KindClientTimeout,
		KindUnknownError,
	}
}

// SearchError is the normalized failure of a backend call.
type SearchError struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Detail is the backend-supplied message, if any.
	Detail string
	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *SearchError) Error() string {
	msg := sentinels[e.Kind].Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the Kind sentinel and the underlying cause.
func (e *SearchError) Unwrap() []error {
	errs := []error{sentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of err, or KindUnknownError when err did not come
// from the gateway.
func KindOf(err error) Kind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknownError
}

// fromStatus classifies a non-2xx backend response. Only the status code
// decides the Kind; detail is carried for display.
func fromStatus(status int, detail string) *SearchError {
	e := &SearchError{Status: status, Detail: detail}
	switch {
	case status == http.StatusBadRequest:
		e.Kind = KindBadRequest
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusRequestTimeout:
		e.Kind = KindUpstreamTimeout
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status >= http.StatusInternalServerError:
		e.Kind = KindServerError
	default:
		e.Kind = KindUnknownError
	}
	return e
}

// fromTransport classifies an error returned before any response arrived.
func fromTransport(ctx context.Context, err error) *SearchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &SearchError{Kind: KindClientTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &SearchError{Kind: KindUnknownError, Detail: "request canceled", Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &SearchError{Kind: KindClientTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &SearchError{Kind: KindClientTimeout, Err: err}
	}
	return &SearchError{Kind: KindNetworkError, Err: err}
}
