package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/property-listings/pkg/cache"
	"github.com/rs/zerolog"
)

const (
	// DefaultIDKey is the store key holding the full property id set
	DefaultIDKey = "all_properties"

	// DefaultIDTTL is how long the id set is trusted before being rebuilt
	DefaultIDTTL = time.Hour
)

// IDCacheConfig holds identifier cache configuration.
type IDCacheConfig struct {
	// Key is the store key (default: all_properties)
	Key string

	// TTL is the id set lifetime (default: 1h)
	TTL time.Duration
}

// IDCache caches the full ordered set of property ids under a single key.
//
// A cached set is authoritative until it expires, even if storage has
// changed since it was written. An empty set is a valid cached value.
type IDCache struct {
	store  cache.Store
	repo   IDLister
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIDCache creates an identifier cache over store and repo.
func NewIDCache(store cache.Store, repo IDLister, cfg IDCacheConfig, logger zerolog.Logger) *IDCache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if repo == nil {
		panic("id lister cannot be nil")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultIDKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIDTTL
	}

	return &IDCache{
		store:  store,
		repo:   repo,
		key:    cfg.Key,
		ttl:    cfg.TTL,
		logger: logger,
	}
}

// Key returns the store key of the id set.
func (c *IDCache) Key() string {
	return c.key
}

// ResolveIDs returns the cached id set, rebuilding it from storage on miss.
//
// A store failure is treated as a miss: ids are read from storage and the
// write-back is attempted anyway. Only storage errors are returned.
func (c *IDCache) ResolveIDs(ctx context.Context) ([]int64, error) {
	data, err := c.store.Get(ctx, c.key)
	switch {
	case err == nil:
		ids, decodeErr := decodeIDs(data)
		if decodeErr == nil {
			cache.CacheHits.WithLabelValues(cache.LayerIDs).Inc()
			c.logger.Debug().
				Str("key", c.key).
				Int("count", len(ids)).
				Msg("Property id cache hit")
			return ids, nil
		}
		cache.CacheErrors.WithLabelValues("get").Inc()
		c.logger.Warn().Err(decodeErr).Str("key", c.key).Msg("Discarding corrupt property id set")
	case errors.Is(err, cache.ErrCacheMiss):
		c.logger.Debug().Str("key", c.key).Msg("Property id cache miss")
	default:
		cache.CacheFallbacks.WithLabelValues(cache.LayerIDs).Inc()
		c.logger.Warn().Err(err).Str("key", c.key).Msg("Property id cache get failed, reading from storage")
	}

	cache.CacheMisses.WithLabelValues(cache.LayerIDs).Inc()
	return c.rebuild(ctx)
}

// Invalidate drops the cached id set so the next ResolveIDs rebuilds it.
func (c *IDCache) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("invalidate property ids: %w", err)
	}
	cache.CacheInvalidations.WithLabelValues(cache.LayerIDs).Inc()
	c.logger.Debug().Str("key", c.key).Msg("Property id cache invalidated")
	return nil
}

func (c *IDCache) rebuild(ctx context.Context) ([]int64, error) {
	ids, err := c.repo.ListAllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list property ids: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode property ids: %w", err)
	}

	if err := c.store.Set(ctx, c.key, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("Failed to cache property ids")
		return ids, nil
	}

	cache.CacheWrittenBytes.WithLabelValues(cache.LayerIDs).Add(float64(len(data)))
	c.logger.Debug().
		Str("key", c.key).
		Int("count", len(ids)).
		Dur("ttl", c.ttl).
		Msg("Cached property ids")

	return ids, nil
}

func decodeIDs(data []byte) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", cache.ErrInvalidEntry, err)
	}
	if ids == nil {
		// "null" is never written; treat it as corrupt rather than empty.
		return nil, fmt.Errorf("%w: null id set", cache.ErrInvalidEntry)
	}
	return ids, nil
}
