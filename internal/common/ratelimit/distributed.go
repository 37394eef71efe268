package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// redisCallTimeout bounds a single limiter round trip
const redisCallTimeout = 2 * time.Second

// distributedLimiter implements Redis-backed distributed rate limiting
type distributedLimiter struct {
	config      Config
	redisClient RedisInterface
}

// NewDistributedLimiter creates a new distributed rate limiter
func NewDistributedLimiter(config Config, redisClient RedisInterface) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required for distributed rate limiter")
	}

	return &distributedLimiter{
		config:      config,
		redisClient: redisClient,
	}, nil
}

// Allow records the request in the shared window for key
func (rl *distributedLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !rl.config.Enabled {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	allowed, _, err := rl.redisClient.CheckRateLimit(ctx, rl.config.KeyPrefix+key, rl.config.Requests, rl.config.Window)
	if err != nil {
		return true, fmt.Errorf("rate limit check for %s: %w", key, err)
	}

	return allowed, nil
}

// Stats returns rate limiter statistics
func (rl *distributedLimiter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"type":       "redis",
		"enabled":    rl.config.Enabled,
		"requests":   rl.config.Requests,
		"window":     rl.config.Window.String(),
		"key_prefix": rl.config.KeyPrefix,
	}
}

// Health checks if the distributed rate limiter is working
func (rl *distributedLimiter) Health() error {
	return rl.redisClient.Health()
}

var _ Limiter = (*distributedLimiter)(nil)
