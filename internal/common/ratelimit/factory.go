package ratelimit

import (
	"fmt"
)

// New creates a rate limiter for config.Type. redisClient is only consulted
// for the redis backend.
func New(config Config, redisClient RedisInterface) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case BackendLocal, "":
		return NewLocalLimiter(config)
	case BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis client is required for distributed rate limiter")
		}
		return NewDistributedLimiter(config, redisClient)
	default:
		return nil, fmt.Errorf("unsupported rate limiter backend type: %s", config.Type)
	}
}
