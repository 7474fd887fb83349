package metrics

import (
	"context"
	"fmt"

	"github.com/Sternrassler/property-listings/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus gauges mirroring the last snapshot of the cache store counters.
var (
	storeHits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "property_cache_store_keyspace_hits",
		Help: "Cache store keyspace hits at the last snapshot",
	})

	storeMisses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "property_cache_store_keyspace_misses",
		Help: "Cache store keyspace misses at the last snapshot",
	})

	storeHitRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "property_cache_store_hit_ratio",
		Help: "Cache store hit ratio at the last snapshot (NaN when there were no accesses)",
	})
)

// StatsSource exposes store-level hit/miss counters.
type StatsSource interface {
	Stats(ctx context.Context) (cache.Stats, error)
}

// Snapshot is a point-in-time view of the cache store counters.
type Snapshot struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`

	// HitRatio is hits/(hits+misses), or nil when there were no accesses.
	HitRatio *float64 `json:"hit_ratio"`
}

// NewSnapshot derives a snapshot from raw counters.
func NewSnapshot(hits, misses int64) Snapshot {
	s := Snapshot{Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		ratio := float64(hits) / float64(total)
		s.HitRatio = &ratio
	}
	return s
}

// FormatHitRatio renders the hit ratio as a percentage, or "N/A".
func (s Snapshot) FormatHitRatio() string {
	if s.HitRatio == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *s.HitRatio*100)
}

// Reporter reads cache store counters and derives the hit ratio.
type Reporter struct {
	source StatsSource
	logger zerolog.Logger
}

// NewReporter creates a metrics reporter.
func NewReporter(source StatsSource, logger zerolog.Logger) *Reporter {
	if source == nil {
		panic("stats source cannot be nil")
	}
	return &Reporter{
		source: source,
		logger: logger,
	}
}

// Snapshot reads the store counters, logs a summary and updates the
// Prometheus gauges. Store errors are returned unchanged in meaning; there
// is no fallback source for these counters.
func (r *Reporter) Snapshot(ctx context.Context) (Snapshot, error) {
	stats, err := r.source.Stats(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to read cache store metrics")
		return Snapshot{}, fmt.Errorf("read cache store stats: %w", err)
	}

	snap := NewSnapshot(stats.Hits, stats.Misses)

	storeHits.Set(float64(snap.Hits))
	storeMisses.Set(float64(snap.Misses))
	if snap.HitRatio != nil {
		storeHitRatio.Set(*snap.HitRatio)
	} else {
		storeHitRatio.Set(nan())
	}

	r.logger.Info().
		Int64("hits", snap.Hits).
		Int64("misses", snap.Misses).
		Str("hit_ratio", snap.FormatHitRatio()).
		Msg("Cache store metrics")

	return snap, nil
}
