// Package metrics registers the Prometheus instrumentation for the client.
// A host application can expose these through the default registry; tests
// read them directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backend client metrics
	ClientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devid_client_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"method", "status"},
	)

	ClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devid_client_request_duration_seconds",
			Help:    "Backend API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Repository cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devid_cache_hits_total",
			Help: "Total number of repository cache hits",
		},
		[]string{"repository"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devid_cache_misses_total",
			Help: "Total number of repository cache misses",
		},
		[]string{"repository"},
	)

	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devid_cache_evictions_total",
			Help: "Total number of repository cache evictions",
		},
		[]string{"repository"},
	)
)
