package ratelimit

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Config represents rate limiter configuration
type Config struct {
	Enabled bool `json:"enabled"`

	// Requests admitted per Window for one key
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`

	// Local token bucket depth
	Burst int `json:"burst"`

	// Backend type
	Type BackendType `json:"type"`

	// Distributed backend settings
	KeyPrefix string `json:"key_prefix,omitempty"`

	// Cleanup settings for local limiters
	MaxKeys       int           `json:"max_keys,omitempty"`
	CleanupPeriod time.Duration `json:"cleanup_period,omitempty"`
}

// BackendType defines the rate limiter backend
type BackendType string

const (
	BackendLocal BackendType = "local"
	BackendRedis BackendType = "redis"
)

// Validate fills defaults and rejects unusable settings
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Requests < 0 || c.Burst < 0 {
		return fmt.Errorf("rate limit requests and burst must not be negative")
	}
	if c.Requests == 0 {
		c.Requests = 600
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Burst == 0 {
		c.Burst = c.Requests
	}

	if c.Type == "" {
		c.Type = BackendLocal
	}

	switch c.Type {
	case BackendLocal:
		if c.MaxKeys <= 0 {
			c.MaxKeys = 10000
		}
		if c.CleanupPeriod <= 0 {
			c.CleanupPeriod = 5 * time.Minute
		}
	case BackendRedis:
		if c.KeyPrefix == "" {
			c.KeyPrefix = "ratelimit:"
		}
	default:
		return fmt.Errorf("unsupported rate limiter backend type: %s", c.Type)
	}

	return nil
}

// Limit converts Requests per Window into a token refill rate
func (c Config) Limit() rate.Limit {
	if c.Requests <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Every(c.Window / time.Duration(c.Requests))
}

// DefaultConfig returns a default rate limiter configuration
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Requests:      600,
		Window:        time.Minute,
		Burst:         20,
		Type:          BackendLocal,
		KeyPrefix:     "ratelimit:",
		MaxKeys:       10000,
		CleanupPeriod: 5 * time.Minute,
	}
}
