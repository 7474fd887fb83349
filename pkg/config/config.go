// Package config loads the property API configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/property-listings/pkg/logging"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	Listen  string        `yaml:"listen"`
	DBPath  string        `yaml:"db_path"`
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// RedisConfig identifies the cache store. Addr is either host:port or a
// redis:// URL.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig controls both cache layers.
type CacheConfig struct {
	IDKey             string        `yaml:"id_key"`
	IDTTL             time.Duration `yaml:"id_ttl"`
	ResponseTTL       time.Duration `yaml:"response_ttl"`
	InvalidateOnWrite bool          `yaml:"invalidate_on_write"`
}

// StorageConfig controls batched reads from the relational store.
type StorageConfig struct {
	BatchSize      int `yaml:"batch_size"`
	MaxConcurrency int `yaml:"max_concurrency"`
}

// LogConfig mirrors logging.Config for YAML.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "properties.db",
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Cache: CacheConfig{
			IDKey:             "all_properties",
			IDTTL:             time.Hour,
			ResponseTTL:       15 * time.Minute,
			InvalidateOnWrite: true,
		},
		Storage: StorageConfig{
			BatchSize:      500,
			MaxConcurrency: 4,
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
	}
}

// Load reads a YAML config file, expands environment variables and applies
// environment overrides. An empty path yields defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Redis.Addr = getEnv("REDIS_URL", c.Redis.Addr)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Listen = ":" + port
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.Cache.IDKey == "" {
		errs = append(errs, errors.New("cache.id_key is required"))
	}
	if c.Cache.IDTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.id_ttl must be positive, got %s", c.Cache.IDTTL))
	}
	if c.Cache.ResponseTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.response_ttl must be positive, got %s", c.Cache.ResponseTTL))
	}
	if c.Storage.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("storage.batch_size must be positive, got %d", c.Storage.BatchSize))
	}
	if c.Storage.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("storage.max_concurrency must be positive, got %d", c.Storage.MaxConcurrency))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	return errors.Join(errs...)
}

// RedisOptions builds go-redis options from the configured address.
func (c *Config) RedisOptions() (*redis.Options, error) {
	if strings.HasPrefix(c.Redis.Addr, "redis://") || strings.HasPrefix(c.Redis.Addr, "rediss://") {
		opts, err := redis.ParseURL(c.Redis.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if c.Redis.Password != "" {
			opts.Password = c.Redis.Password
		}
		return opts, nil
	}

	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}, nil
}

// Logging converts the log section to a logging.Config.
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.LogLevel(c.Log.Level)
	lc.Pretty = c.Log.Pretty
	return lc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
