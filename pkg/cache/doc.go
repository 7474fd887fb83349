// Package cache provides the cache store abstraction and response-level
// caching for the property listings API.
//
// The package offers:
//
// - Store, a key-value interface with TTLs and store-wide hit/miss counters
// - RedisStore, the production Store backed by go-redis
// - MemoryStore, an in-process Store with an injectable clock for tests
// - ResponseCache, which memoizes rendered responses keyed by request
// - Prometheus metrics for every cache layer
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create store and response cache
//	store := cache.NewRedisStore(redisClient)
//	responses := cache.NewResponseCache(store, 15*time.Minute, logger)
//
//	// Memoize a render
//	body, err := responses.GetOrRender(ctx, key, func(ctx context.Context) ([]byte, error) {
//		return renderList(ctx)
//	})
//
// # HTTP Response Caching
//
//	mux.Handle("GET /properties", responses.Middleware(nil)(listHandler))
//
// Responses carry X-Cache: HIT or X-Cache: MISS. Only 200 responses are stored.
//
// # Failure Model
//
// A store that cannot be reached is treated as a permanent miss by
// ResponseCache: the handler is rendered directly and the failure is logged.
// Store.Stats has no such fallback and returns ErrStoreUnavailable.
//
// # Metrics
//
//   - property_cache_hits_total{layer} - Cache hits (ids, response)
//   - property_cache_misses_total{layer} - Cache misses
//   - property_cache_fallbacks_total{layer} - Store failures served from source
//   - property_cache_written_bytes_total{layer} - Bytes written to the store
//   - property_cache_invalidations_total{layer} - Write-triggered invalidations
//   - property_cache_errors_total{operation} - Store operation errors
package cache
