// Package ratelimit limits inbound deliveries per key, usually the client IP.
// The local backend keeps one token bucket per key in memory; the redis
// backend shares a sliding window across instances.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for key may proceed
type Limiter interface {
	// Allow reports whether the request is admitted. A backend failure is
	// returned alongside allowed=true; callers fail open.
	Allow(ctx context.Context, key string) (bool, error)

	Stats() map[string]interface{}
	Health() error
}

// RedisInterface defines the minimal Redis interface needed for rate limiting
type RedisInterface interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
	Health() error
}
