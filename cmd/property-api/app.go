package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Sternrassler/property-listings/pkg/api"
	"github.com/Sternrassler/property-listings/pkg/batch"
	"github.com/Sternrassler/property-listings/pkg/cache"
	"github.com/Sternrassler/property-listings/pkg/config"
	"github.com/Sternrassler/property-listings/pkg/logging"
	"github.com/Sternrassler/property-listings/pkg/metrics"
	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/Sternrassler/property-listings/pkg/storage/sqlite"
	"github.com/redis/go-redis/v9"
)

// app is the wired service graph shared by the subcommands.
type app struct {
	cfg       *config.Config
	redis     *redis.Client
	store     cache.Store
	db        *sqlite.DB
	ids       *properties.IDCache
	responses *cache.ResponseCache
	service   *properties.Service
	reporter  *metrics.Reporter
}

// loadConfig loads and validates configuration and installs the global logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logging.Setup(cfg.Logging())
	return cfg, nil
}

// newRedisClient connects the cache store client. It does not dial.
func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := cfg.RedisOptions()
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// newApp opens storage and wires both cache layers, the service and the
// metrics reporter.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(ctx, cfg.DBPath,
		sqlite.WithBatchConfig(batch.Config{
			ChunkSize:      cfg.Storage.BatchSize,
			MaxConcurrency: cfg.Storage.MaxConcurrency,
		}),
		sqlite.WithLogger(logging.NewLogger("storage")),
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	store := cache.NewRedisStore(redisClient)

	ids := properties.NewIDCache(store, db, properties.IDCacheConfig{
		Key: cfg.Cache.IDKey,
		TTL: cfg.Cache.IDTTL,
	}, logging.NewLogger("id-cache"))

	responses := cache.NewResponseCache(store, cfg.Cache.ResponseTTL, logging.NewLogger("response-cache"))

	service := properties.NewService(db, ids, properties.ServiceConfig{
		InvalidateOnWrite: cfg.Cache.InvalidateOnWrite,
		Invalidators:      []properties.Invalidator{responses.ForPath("/properties")},
	}, logging.NewLogger("properties"))

	return &app{
		cfg:       cfg,
		redis:     redisClient,
		store:     store,
		db:        db,
		ids:       ids,
		responses: responses,
		service:   service,
		reporter:  metrics.NewReporter(store, logging.NewLogger("metrics-reporter")),
	}, nil
}

// handler builds the HTTP API over the app.
func (a *app) handler() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Service:   a.service,
		Responses: a.responses,
		Reporter:  a.reporter,
		Checks: []api.ReadinessCheck{
			{Name: "redis", Pinger: a.store},
			{Name: "database", Pinger: a.db},
		},
		Logger: logging.NewLogger("api"),
	})
}

// Close releases storage and the cache store connection.
func (a *app) Close() error {
	dbErr := a.db.Close()
	redisErr := a.redis.Close()
	if dbErr != nil {
		return dbErr
	}
	return redisErr
}
