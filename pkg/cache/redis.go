package cache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatchSize is the COUNT hint used when scanning keys for prefix deletion.
const scanBatchSize = 100

// Compile-time check that RedisStore satisfies Store.
var _ Store = (*RedisStore)(nil)

// RedisStore is the Redis-backed Store implementation.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a new store with Redis backend.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// Get retrieves the raw value stored under key.
// Returns ErrCacheMiss if the key doesn't exist (Redis expires keys itself).
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: redis get: %w", ErrStoreUnavailable, err)
	}
	return data, nil
}

// Set stores value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}

	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: redis set: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("%w: redis del: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// DeletePrefix removes every key beginning with prefix using SCAN so the
// server is never blocked by KEYS.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	iter := s.redis.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatchSize).Iterator()

	var (
		batch   []string
		removed int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.redis.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatchSize {
			if err := flush(); err != nil {
				CacheErrors.WithLabelValues("delete").Inc()
				return removed, fmt.Errorf("%w: redis del: %w", ErrStoreUnavailable, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("scan").Inc()
		return removed, fmt.Errorf("%w: redis scan: %w", ErrStoreUnavailable, err)
	}
	if err := flush(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return removed, fmt.Errorf("%w: redis del: %w", ErrStoreUnavailable, err)
	}

	return removed, nil
}

// Stats reads keyspace_hits and keyspace_misses from INFO stats.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	info, err := s.redis.Info(ctx, "stats").Result()
	if err != nil {
		CacheErrors.WithLabelValues("info").Inc()
		return Stats{}, fmt.Errorf("%w: redis info: %w", ErrStoreUnavailable, err)
	}
	return parseInfoStats(info)
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// parseInfoStats extracts the keyspace counters from an INFO reply.
// Absent counters are reported as zero.
func parseInfoStats(info string) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		var target *int64
		switch name {
		case "keyspace_hits":
			target = &stats.Hits
		case "keyspace_misses":
			target = &stats.Misses
		default:
			continue
		}

		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return Stats{}, fmt.Errorf("%w: parse %s %q", ErrInvalidEntry, name, value)
		}
		*target = n
	}

	return stats, scanner.Err()
}

// escapeGlob escapes Redis MATCH metacharacters so prefix is matched literally.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
