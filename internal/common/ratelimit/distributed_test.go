package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhook-gatekeeper/internal/redis"
)

func newRedisLimiter(t *testing.T, requests int) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	limiter, err := New(Config{
		Enabled:  true,
		Requests: requests,
		Window:   time.Minute,
		Type:     BackendRedis,
	}, client)
	require.NoError(t, err)
	return limiter, mr
}

func TestDistributedLimiter_Allow(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "192.0.2.2")
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.True(t, mr.Exists("ratelimit:192.0.2.1"))
}

func TestDistributedLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 1)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, allowed)
	assert.Error(t, limiter.Health())
}

func TestDistributedLimiter_Stats(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 10)

	stats := limiter.Stats()
	assert.Equal(t, "redis", stats["type"])
	assert.Equal(t, "ratelimit:", stats["key_prefix"])
}

func TestNew(t *testing.T) {
	t.Run("local by default", func(t *testing.T) {
		limiter, err := New(Config{Enabled: true}, nil)
		require.NoError(t, err)
		assert.Equal(t, "local", limiter.Stats()["type"])
	})

	t.Run("redis requires client", func(t *testing.T) {
		_, err := New(Config{Enabled: true, Type: BackendRedis}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(Config{Enabled: true, Type: "memcached"}, nil)
		assert.Error(t, err)
	})

	t.Run("negative requests", func(t *testing.T) {
		_, err := New(Config{Enabled: true, Requests: -1}, nil)
		assert.Error(t, err)
	})
}

func TestConfig_Limit(t *testing.T) {
	config := Config{Enabled: true, Requests: 600, Window: time.Minute}
	require.NoError(t, config.Validate())

	assert.InDelta(t, 10.0, float64(config.Limit()), 0.001)
	assert.Equal(t, 600, config.Burst)
}
