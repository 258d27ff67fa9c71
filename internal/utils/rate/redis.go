package rate

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
)

// RedisLimiter is a fixed-window limiter with counters in redis, for
// deployments running more than one instance of the service.
type RedisLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLimiter creates a redis-backed limiter.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, logger: logger}
}

// Allow increments the key's counter, setting the window TTL on first use.
// Redis failures fail open: a broken counter store must not lock every
// client out.
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule config.RateLimitRule) (Decision, error) {
	if !rule.Enabled || rule.Limit <= 0 {
		return allowAll(rule), nil
	}

	redisKey := fmt.Sprintf("rate:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error("rate limiter increment failed", zap.Error(err), zap.String("key", key))
		return allowAll(rule), err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, rule.Window).Err(); err != nil {
			l.logger.Error("rate limiter expire failed", zap.Error(err), zap.String("key", key))
		}
	}

	if count > int64(rule.Limit) {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = rule.Window
		}
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}

	return Decision{Allowed: true, Remaining: rule.Limit - int(count)}, nil
}

// Reset clears the counter for a key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("rate:%s", key)).Err()
}

var _ Limiter = (*RedisLimiter)(nil)
