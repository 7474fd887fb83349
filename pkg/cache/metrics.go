package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache layers used as metric label values.
const (
	LayerIDs      = "ids"
	LayerResponse = "response"
)

var (
	// CacheHits tracks application-level cache hits by layer (ids, response)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_hits_total",
			Help: "Total number of property cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks application-level cache misses by layer
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_misses_total",
			Help: "Total number of property cache misses",
		},
		[]string{"layer"},
	)

	// CacheFallbacks tracks requests served without the cache because the store failed
	CacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_fallbacks_total",
			Help: "Total number of cache lookups that fell back to the source because the store failed",
		},
		[]string{"layer"},
	)

	// CacheWrittenBytes tracks bytes written to the store by layer
	CacheWrittenBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_written_bytes_total",
			Help: "Total bytes written to the cache store",
		},
		[]string{"layer"},
	)

	// CacheInvalidations tracks explicit invalidations triggered by writes
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_invalidations_total",
			Help: "Total number of cache invalidations triggered by writes",
		},
		[]string{"layer"},
	)

	// CacheErrors tracks cache store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_cache_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "scan", "info"
	)
)
