package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config holds batch fetcher configuration.
type Config struct {
	// ChunkSize is the maximum number of ids per fetch
	ChunkSize int

	// MaxConcurrency is the maximum number of chunks fetched in parallel
	MaxConcurrency int

	// Timeout per chunk fetch (0 = no per-chunk deadline)
	Timeout time.Duration
}

// DefaultConfig returns a configuration safe for SQLite.
func DefaultConfig() Config {
	return Config{
		ChunkSize:      500,
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = def.MaxConcurrency
	}
	return c
}

// Chunk splits ids into consecutive slices of at most size elements.
// The returned slices share ids' backing array.
func Chunk(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]int64{ids}
	}

	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end:end])
	}
	return chunks
}

// FetchChunked fetches ids in chunks using a bounded worker pool and
// concatenates the results in chunk order.
func FetchChunked[T any](ctx context.Context, ids []int64, cfg Config, fetch func(ctx context.Context, chunk []int64) ([]T, error)) ([]T, error) {
	cfg = cfg.withDefaults()
	chunks := Chunk(ids, cfg.ChunkSize)

	switch len(chunks) {
	case 0:
		return []T{}, nil
	case 1:
		// Single chunk optimization
		return fetchOne(ctx, chunks[0], cfg.Timeout, fetch)
	}

	start := time.Now()
	results := make([][]T, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			rows, err := fetchOne(gctx, chunk, cfg.Timeout, fetch)
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().
			Err(err).
			Int("ids", len(ids)).
			Int("chunks", len(chunks)).
			Msg("Chunked fetch failed")
		return nil, err
	}

	total := 0
	for _, rows := range results {
		total += len(rows)
	}
	out := make([]T, 0, total)
	for _, rows := range results {
		out = append(out, rows...)
	}

	log.Debug().
		Int("ids", len(ids)).
		Int("chunks", len(chunks)).
		Int("rows", total).
		Dur("duration", time.Since(start)).
		Msg("Chunked fetch complete")

	return out, nil
}

func fetchOne[T any](ctx context.Context, chunk []int64, timeout time.Duration, fetch func(ctx context.Context, chunk []int64) ([]T, error)) ([]T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fetch(ctx, chunk)
}
