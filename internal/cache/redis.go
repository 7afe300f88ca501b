package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a redis-backed Cache. All failures are swallowed and logged;
// callers only ever observe a miss.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis creates a redis-backed cache.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger,
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}

		return "", false
	}

	return value, true
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))

		return false
	}

	return true
}

func (r *Redis) Delete(ctx context.Context, key string) bool {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))

		return false
	}

	return true
}

func (r *Redis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, bool) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Warn("cache increment failed", zap.String("key", key), zap.Error(err))

		return 0, false
	}

	// First increment created the key; start its expiry window.
	if count == 1 && ttl > 0 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			r.logger.Warn("cache expire failed", zap.String("key", key), zap.Error(err))
		}
	}

	return count, true
}

// Compile-time check.
var _ Cache = (*Redis)(nil)
