// Package metrics provides Prometheus instrumentation for dashseek.
//
// All metrics are prefixed with "dashseek_" and registered on the default
// registry at package initialisation.
//
// HTTP metrics track request rates and latency of the API. Resolution
// metrics count resolver outcomes by failure kind. Manifest metrics cover
// the parsed-manifest cache and origin fetches.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashseek_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashseek_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashseek_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPRequestsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashseek_http_requests_throttled_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		},
	)
)

// Resolution metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashseek_resolutions_total",
			Help: "Total number of segment resolutions by outcome (ok or failure kind)",
		},
		[]string{"outcome"},
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashseek_resolution_duration_seconds",
			Help:    "Time spent resolving a segment, manifest parsing included",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)
)

// Manifest metrics
var (
	ManifestCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashseek_manifest_cache_hits_total",
			Help: "Total number of parsed-manifest cache hits",
		},
	)

	ManifestCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashseek_manifest_cache_misses_total",
			Help: "Total number of parsed-manifest cache misses",
		},
	)

	ManifestCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashseek_manifest_cache_evictions_total",
			Help: "Total number of manifests evicted from the cache",
		},
	)

	ManifestCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashseek_manifest_cache_entries",
			Help: "Number of parsed manifests currently cached",
		},
	)

	ManifestFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashseek_manifest_fetches_total",
			Help: "Total number of manifest fetches from origin by status",
		},
		[]string{"status"},
	)
)
