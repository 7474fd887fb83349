package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultResponseTTL is how long a rendered list response is served from cache.
const DefaultResponseTTL = 15 * time.Minute

// RenderFunc produces a response entry on cache miss.
type RenderFunc func(ctx context.Context) (*CacheEntry, error)

// ResponseCache memoizes rendered responses in a Store.
//
// Store failures are never surfaced: a failed lookup is treated as a miss and
// a failed write is logged, so the cache can only ever cost a render.
type ResponseCache struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewResponseCache creates a response cache. A non-positive ttl falls back to DefaultResponseTTL.
func NewResponseCache(store Store, ttl time.Duration, logger zerolog.Logger) *ResponseCache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured entry lifetime.
func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

// GetOrRender returns the cached body for key, invoking render only on miss.
// Render errors are returned and nothing is cached.
func (c *ResponseCache) GetOrRender(ctx context.Context, key RequestKey, render func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	entry, _, err := c.GetOrRenderEntry(ctx, key, func(ctx context.Context) (*CacheEntry, error) {
		body, err := render(ctx)
		if err != nil {
			return nil, err
		}
		return &CacheEntry{Data: body, StatusCode: http.StatusOK}, nil
	})
	if err != nil {
		return nil, err
	}
	return entry.Data, nil
}

// GetOrRenderEntry is GetOrRender for full responses. The returned bool
// reports a cache hit. Entries that are not Cacheable are returned but not stored.
func (c *ResponseCache) GetOrRenderEntry(ctx context.Context, key RequestKey, render RenderFunc) (*CacheEntry, bool, error) {
	storeKey := key.String()

	if entry, ok := c.lookup(ctx, storeKey); ok {
		CacheHits.WithLabelValues(LayerResponse).Inc()
		c.logger.Debug().
			Str("key", storeKey).
			Str("signature", key.Signature()).
			Dur("ttl", entry.TTL()).
			Msg("Response cache hit")
		return entry, true, nil
	}

	CacheMisses.WithLabelValues(LayerResponse).Inc()

	entry, err := render(ctx)
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, fmt.Errorf("render returned nil entry")
	}

	if entry.Cacheable() {
		c.save(ctx, storeKey, entry)
	}

	return entry, false, nil
}

// Invalidate removes every cached response for path.
func (c *ResponseCache) Invalidate(ctx context.Context, path string) (int, error) {
	removed, err := c.store.DeletePrefix(ctx, PathPrefix(path))
	if err != nil {
		return removed, fmt.Errorf("invalidate responses for %s: %w", path, err)
	}

	CacheInvalidations.WithLabelValues(LayerResponse).Inc()
	c.logger.Debug().
		Str("path", path).
		Int("removed", removed).
		Msg("Response cache invalidated")

	return removed, nil
}

// ForPath returns an invalidator bound to a single path.
func (c *ResponseCache) ForPath(path string) *PathInvalidator {
	return &PathInvalidator{cache: c, path: path}
}

// PathInvalidator invalidates all cached responses for one path.
type PathInvalidator struct {
	cache *ResponseCache
	path  string
}

// Invalidate removes the cached responses for the bound path.
func (p *PathInvalidator) Invalidate(ctx context.Context) error {
	_, err := p.cache.Invalidate(ctx, p.path)
	return err
}

func (c *ResponseCache) lookup(ctx context.Context, storeKey string) (*CacheEntry, bool) {
	data, err := c.store.Get(ctx, storeKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheFallbacks.WithLabelValues(LayerResponse).Inc()
			c.logger.Warn().Err(err).Str("key", storeKey).Msg("Response cache get failed, rendering directly")
		}
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		c.logger.Warn().
			Err(fmt.Errorf("%w: %v", ErrInvalidEntry, err)).
			Str("key", storeKey).
			Msg("Discarding corrupt response cache entry")
		return nil, false
	}

	if entry.IsExpired() {
		c.logger.Debug().
			Str("key", storeKey).
			Time("expires", entry.Expires).
			Msg("Ignoring expired response cache entry")
		return nil, false
	}

	return &entry, true
}

func (c *ResponseCache) save(ctx context.Context, storeKey string, entry *CacheEntry) {
	now := time.Now()
	entry.CachedAt = now
	entry.Expires = now.Add(c.ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		c.logger.Warn().Err(err).Str("key", storeKey).Msg("Failed to marshal response cache entry")
		return
	}

	if err := c.store.Set(ctx, storeKey, data, c.ttl); err != nil {
		CacheFallbacks.WithLabelValues(LayerResponse).Inc()
		c.logger.Warn().Err(err).Str("key", storeKey).Msg("Failed to cache response")
		return
	}

	CacheWrittenBytes.WithLabelValues(LayerResponse).Add(float64(len(data)))
	c.logger.Debug().
		Str("key", storeKey).
		Dur("ttl", c.ttl).
		Int("bytes", len(entry.Data)).
		Msg("Cached response")
}
