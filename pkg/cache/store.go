package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrStoreUnavailable indicates the cache store could not be reached
	ErrStoreUnavailable = errors.New("cache store unavailable")
)

// Store is a key-value store with TTL support and global hit/miss counters.
//
// Implementations must return ErrCacheMiss for absent or expired keys and wrap
// connectivity failures with ErrStoreUnavailable.
type Store interface {
	// Get returns the raw value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix and returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Stats returns the store-wide hit/miss counters.
	Stats(ctx context.Context) (Stats, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// Stats holds cumulative store-level counters.
// For Redis these are keyspace_hits and keyspace_misses from INFO stats and
// therefore include every client of the same server.
type Stats struct {
	Hits   int64
	Misses int64
}
