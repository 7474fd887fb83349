// Package metrics provides the cache Metrics Reporter and documents every
// Prometheus metric exported by the property listings API.
//
// Application-level cache metrics are defined in pkg/cache to keep packages
// free of circular dependencies; this package owns the store-level gauges.
package metrics

import "math"

func nan() float64 {
	return math.NaN()
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - property_cache_hits_total{layer="ids"|"response"} (Counter): Cache hits by layer
//   - property_cache_misses_total{layer} (Counter): Cache misses by layer
//   - property_cache_fallbacks_total{layer} (Counter): Store failures served from source
//   - property_cache_written_bytes_total{layer} (Counter): Bytes written to the store
//   - property_cache_invalidations_total{layer} (Counter): Write-triggered invalidations
//   - property_cache_errors_total{operation} (Counter): Store operation errors
//
// Store Metrics (pkg/metrics, refreshed on every snapshot):
//   - property_cache_store_keyspace_hits (Gauge): keyspace_hits from Redis INFO
//   - property_cache_store_keyspace_misses (Gauge): keyspace_misses from Redis INFO
//   - property_cache_store_hit_ratio (Gauge): Derived hit ratio, NaN with no accesses
//
// HTTP Metrics (pkg/api):
//   - property_http_requests_total{route, status} (Counter): Requests by route and status
//   - property_http_request_duration_seconds{route} (Histogram): Request duration
//
// Client Metrics (pkg/client):
//   - property_client_requests_total{path, status} (Counter): API requests by path and status
//   - property_client_request_duration_seconds{path} (Histogram): Duration including retries
//   - property_client_retries_total{error_class} (Counter): Retry attempts by error class
//   - property_client_retry_backoff_seconds{error_class} (Histogram): Backoff duration
//   - property_client_retry_exhausted_total{error_class} (Counter): Exhausted retries
//
// Example Prometheus Queries:
//
//   # Identifier cache hit rate
//   rate(property_cache_hits_total{layer="ids"}[5m]) /
//   (rate(property_cache_hits_total{layer="ids"}[5m]) + rate(property_cache_misses_total{layer="ids"}[5m]))
//
//   # Requests served while the cache store was down
//   rate(property_cache_fallbacks_total[5m])
//
//   # P95 list latency
//   histogram_quantile(0.95, rate(property_http_request_duration_seconds_bucket{route="list"}[5m]))
