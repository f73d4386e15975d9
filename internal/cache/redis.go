// Package cache provides the opt-in Redis-backed resolver cache. The
// server runs without it unless REDIS_ADDR is configured.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// ResolverCache stores resolved agent identifiers with a TTL. Lookup
// and store failures are logged at debug level and otherwise ignored.
type ResolverCache struct {
	redis  *Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolverCache builds a cache on top of an established connection.
func NewResolverCache(r *Redis, ttl time.Duration, logger *zap.Logger) *ResolverCache {
	return &ResolverCache{redis: r, ttl: ttl, logger: logger}
}

// Get returns the cached identifier for term, if any.
func (c *ResolverCache) Get(ctx context.Context, term string) (int64, bool) {
	val, err := c.redis.Client.Get(ctx, cacheKey(term)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("resolver cache lookup failed", zap.Error(err))
		}
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Set stores the identifier for term with the configured TTL.
func (c *ResolverCache) Set(ctx context.Context, term string, id int64) {
	if err := c.redis.Client.Set(ctx, cacheKey(term), strconv.FormatInt(id, 10), c.ttl).Err(); err != nil {
		c.logger.Debug("resolver cache store failed", zap.Error(err))
	}
}

func cacheKey(term string) string {
	return "resolver:agent:" + term
}
