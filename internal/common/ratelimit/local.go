package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// localLimiter keeps one token bucket per key. Buckets idle for longer than
// CleanupPeriod expire, and at most MaxKeys are retained.
type localLimiter struct {
	mu       sync.Mutex
	config   Config
	limiters *expirable.LRU[string, *rate.Limiter]
	now      func() time.Time
}

// NewLocalLimiter creates a new in-memory limiter
func NewLocalLimiter(config Config) (Limiter, error) {
	return newLocalLimiter(config, time.Now)
}

func newLocalLimiter(config Config, now func() time.Time) (*localLimiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	size := config.MaxKeys
	if size <= 0 {
		size = 1
	}

	return &localLimiter{
		config:   config,
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, config.CleanupPeriod),
		now:      now,
	}, nil
}

// Allow takes one token from the bucket for key
func (rl *localLimiter) Allow(_ context.Context, key string) (bool, error) {
	if !rl.config.Enabled {
		return true, nil
	}

	return rl.getLimiterForKey(key).AllowN(rl.now(), 1), nil
}

func (rl *localLimiter) getLimiterForKey(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.config.Limit(), rl.config.Burst)
	}
	// Add refreshes the entry's TTL on every use.
	rl.limiters.Add(key, limiter)
	return limiter
}

// Stats returns rate limiter statistics
func (rl *localLimiter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"type":        "local",
		"enabled":     rl.config.Enabled,
		"requests":    rl.config.Requests,
		"window":      rl.config.Window.String(),
		"burst":       rl.config.Burst,
		"active_keys": rl.limiters.Len(),
		"max_keys":    rl.config.MaxKeys,
	}
}

// Health checks if the rate limiter is working properly
func (rl *localLimiter) Health() error {
	return nil
}

var _ Limiter = (*localLimiter)(nil)
