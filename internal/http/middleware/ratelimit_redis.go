package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisRateLimiter enforces limit requests per window per key across all
// replicas sharing one Redis. Each window is a counter key that expires with
// the window. When Redis is unreachable the limiter fails open.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	keyFn  keyFunc
	prefix string

	now func() time.Time
}

// NewRedisRateLimiter parses redisURL, checks connectivity and returns a
// limiter allowing limit requests per window.
func NewRedisRateLimiter(redisURL string, limit int, window time.Duration, keyFn keyFunc) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisRateLimiterWithClient(client, limit, window, keyFn), nil
}

// NewRedisRateLimiterWithClient wraps an existing client.
func NewRedisRateLimiterWithClient(client *redis.Client, limit int, window time.Duration, keyFn keyFunc) *RedisRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RedisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		keyFn:  keyFn,
		prefix: "forum:rl:",
	}
}

// Close releases the Redis connection pool.
func (rl *RedisRateLimiter) Close() error { return rl.client.Close() }

func (rl *RedisRateLimiter) clock() time.Time {
	if rl.now != nil {
		return rl.now()
	}
	return time.Now()
}

// Allow counts one request for key and reports whether it fits the current
// window, plus the time left in that window.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := rl.clock()
	start := now.Truncate(rl.window)
	k := fmt.Sprintf("%s%s:%d", rl.prefix, key, start.Unix())

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, rl.window)
		return nil
	})
	if err != nil {
		return true, 0, err
	}
	return incr.Val() <= rl.limit, start.Add(rl.window).Sub(now), nil
}

// Handler returns the limiting middleware.
func (rl *RedisRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		ok, retry, err := rl.Allow(c.Request.Context(), rl.keyFn(c))
		if err != nil {
			log.Warn().Err(err).Msg("redis rate limiter unavailable, allowing request")
		}
		if ok {
			c.Next()
			return
		}
		rejectRateLimited(c, "redis", retry)
	}
}
