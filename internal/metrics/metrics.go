// Package metrics defines Prometheus metrics for price-compare.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pcmp"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Search backend metrics.
var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total search backend calls by endpoint and outcome kind.",
	}, []string{"endpoint", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of search backend calls in seconds.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"endpoint"})

	BackendSlowRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_slow_requests_total",
		Help:      "Total search backend calls slower than the warning threshold.",
	}, []string{"endpoint"})

	BackendUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_up",
		Help:      "Whether the last search backend health probe succeeded (1) or not (0).",
	})
)

// Search pipeline metrics.
var (
	SearchResultsCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results_count",
		Help:      "Number of offers returned per successful search.",
		Buckets:   []float64{0, 1, 5, 10, 20, 30, 40, 50},
	})

	StaleResponsesDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_discarded_total",
		Help:      "Total search responses dropped because a newer search superseded them.",
	})

	SuggestionsServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestions_served_total",
		Help:      "Total suggestions served by source (local, remote or popular).",
	}, []string{"source"})
)

// History metrics.
var (
	HistoryWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_write_failures_total",
		Help:      "Total recent-search writes that failed and were skipped.",
	})
)

// Scheduler metrics.
var (
	RetailerRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retailer_refresh_total",
		Help:      "Total retailer cache refresh cycles.",
	})

	RetailerRefreshErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retailer_refresh_errors_total",
		Help:      "Total retailer cache refresh failures.",
	})

	RetailersCached = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "retailers_cached",
		Help:      "Number of retailers currently held in the cache.",
	})
)
