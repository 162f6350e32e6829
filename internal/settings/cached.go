// internal/settings/cached.go
package settings

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yieldledger/internal/domain"
	"yieldledger/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "yieldledger:settings"

// RedisConfig defines connection parameters for Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// NewRedisClient returns a go-redis client for cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

// Cached keeps the settings of an upstream provider in Redis for ttl. A Redis
// failure degrades to reading upstream directly.
type Cached struct {
	client   redis.Cmdable
	upstream Provider
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewCached wraps upstream with a Redis cache.
func NewCached(client redis.Cmdable, upstream Provider, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Cached {
	return &Cached{
		client:   client,
		upstream: upstream,
		ttl:      ttl,
		logger:   logger.With("component", "settings_cache"),
		metrics:  m,
	}
}

// Current returns cached settings or loads and caches them.
func (c *Cached) Current(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	res, err := c.client.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(res), &s); err == nil {
			c.count("cache_hit")
			return s, nil
		}
		c.logger.WarnContext(ctx, "discarding malformed cached settings")
	case errors.Is(err, redis.Nil):
		c.count("cache_miss")
	default:
		c.count("cache_error")
		c.logger.WarnContext(ctx, "redis get failed, reading settings upstream", "error", err)
	}

	s, err = c.upstream.Current(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := c.store(ctx, s); err != nil {
		c.logger.WarnContext(ctx, "failed to cache settings", "error", err)
	}
	return s, nil
}

// Invalidate drops the cached copy.
func (c *Cached) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", cacheKey, err)
	}
	return nil
}

func (c *Cached) store(ctx context.Context, s domain.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return c.client.Set(ctx, cacheKey, data, c.ttl).Err()
}

func (c *Cached) count(source string) {
	if c.metrics != nil {
		c.metrics.SettingsLookups.WithLabelValues(source).Inc()
	}
}
