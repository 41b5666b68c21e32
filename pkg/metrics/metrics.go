// Package metrics provides Prometheus metrics for the pokedex service:
// HTTP RED metrics, cache hit ratio per namespace and upstream outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pokedex"

var (
	// HTTPRequestTotal counts requests by method, route and status.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds is request latency by route.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2.5, 9), // 5ms to ~7.6s
		},
		[]string{"method", "route"},
	)

	// CacheLookupsTotal counts cache lookups by key namespace and result (hit|miss).
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups by key namespace and result.",
		},
		[]string{"kind", "result"},
	)

	// UpstreamRequestsTotal counts upstream GETs by outcome (ok|not_found|unavailable).
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream requests by outcome.",
		},
		[]string{"outcome"},
	)

	// UpstreamRequestDurationSeconds is upstream call latency.
	UpstreamRequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)

	// DetailFailuresTotal counts list slots that degraded to the empty detail.
	DetailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_failures_total",
			Help:      "Total number of per-item detail fetches that fell back to empty details.",
		},
	)
)
