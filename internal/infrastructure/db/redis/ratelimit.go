package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter backed by Redis.
// Key format: ratelimit:<client>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per client in each window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request for client and reports whether it is within the
// limit for the current window.
func (l *RateLimiter) Allow(ctx context.Context, client string) (bool, error) {
	key := l.key(client)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}

func (l *RateLimiter) key(client string) string {
	start := l.now().Truncate(l.window)
	return fmt.Sprintf("ratelimit:%s:%d", client, start.Unix())
}
