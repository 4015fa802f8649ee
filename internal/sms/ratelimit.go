package sms

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter bounds how many messages one phone identity may submit per
// window. Requests over the limit are not dispatched.
type RateLimiter interface {
	Allow(ctx context.Context, phone string) (bool, error)
}

// RedisRateLimiter counts requests per phone in Redis so the limit holds
// across horizontally scaled instances. Fails open on cache errors.
type RedisRateLimiter struct {
	cache  *redis.Client
	max    int
	window time.Duration
}

// NewRedisRateLimiter builds a limiter allowing max requests per window.
func NewRedisRateLimiter(cache *redis.Client, max int, window time.Duration) *RedisRateLimiter {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisRateLimiter{cache: cache, max: max, window: window}
}

// Allow increments the window counter for the phone and reports whether the
// request is within the limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, phone string) (bool, error) {
	key := "rl:sms:" + phone
	cnt, err := l.cache.Incr(ctx, key).Result()
	if err != nil {
		return true, err // fail-open on cache errors
	}
	if cnt == 1 {
		l.cache.Expire(ctx, key, l.window)
	}
	return cnt <= int64(l.max), nil
}

// NopLimiter allows everything. Used in development without Redis.
type NopLimiter struct{}

// Allow always permits the request.
func (NopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
