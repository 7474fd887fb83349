// Package batch provides bounded parallel fetching of large identifier sets.
//
// Relational stores cap the number of bound parameters per statement (SQLite
// defaults to 32766, older builds to 999), so an "id IN (...)" lookup over an
// unbounded id set must be split. This package chunks the ids and runs the
// chunks through a worker pool, failing the whole fetch on the first error.
//
// Example usage:
//
//	cfg := batch.DefaultConfig()
//	rows, err := batch.FetchChunked(ctx, ids, cfg, func(ctx context.Context, chunk []int64) ([]Property, error) {
//		return queryChunk(ctx, chunk)
//	})
//
// The fetcher:
//   - Splits ids into chunks of ChunkSize
//   - Runs a single chunk inline, without spawning workers
//   - Otherwise runs up to MaxConcurrency chunks at once
//   - Cancels outstanding chunks on the first error
//   - Concatenates results in chunk order
package batch
