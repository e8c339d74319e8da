// Package ratelimit provides a Redis-backed request limiter for the
// credential endpoints that are attractive to brute-force (login,
// forgot-password). Limiting is per client key over a fixed one-minute
// window; the limiter fails open when Redis is unavailable so that an
// infrastructure outage never locks users out.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"credkeeper/internal/logging"
)

const window = time.Minute

// Limiter counts requests per key in Redis.
type Limiter struct {
	client *redis.Client
	limit  int
	logger logging.Logger
}

func New(client *redis.Client, perMinute int, logger logging.Logger) *Limiter {
	return &Limiter{
		client: client,
		limit:  perMinute,
		logger: logger.With("module", "ratelimit"),
	}
}

// Allow reports whether the request identified by key may proceed. Errors
// talking to Redis are logged and treated as allowed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// the window key is created together with its TTL, so a failure between
	// the two calls can never leave behind a counter that outlives the window
	created, err := l.client.SetNX(ctx, redisKey, 1, window).Result()
	if err != nil {
		l.logger.Warn(ctx, "rate limiter unavailable, failing open", "error", err.Error())
		return true
	}
	if created {
		return l.limit >= 1
	}

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn(ctx, "rate limiter unavailable, failing open", "error", err.Error())
		return true
	}

	return count <= int64(l.limit)
}
