package circuitbreaker

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
)

func TestGoBreakerAdapter(t *testing.T) {
	logger := logging.NewNopLogger()

	t.Run("basic operation", func(t *testing.T) {
		cb := NewGoBreaker("test-basic", Config{MaxFailures: 2, Timeout: 100 * time.Millisecond, MaxConcurrentRequests: 1}, logger)

		assert.Equal(t, StateClosed, cb.State())
		assert.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
		assert.Equal(t, "test-basic", cb.Name())
	})

	t.Run("opens after downstream failures", func(t *testing.T) {
		cb := NewGoBreaker("test-failures", Config{MaxFailures: 3, Timeout: time.Minute, MaxConcurrentRequests: 1}, logger)

		for i := 0; i < 3; i++ {
			err := cb.Execute(context.Background(), func() error {
				return errors.DownstreamError("refused", nil)
			})
			assert.Error(t, err)
		}

		assert.Equal(t, StateOpen, cb.State())
		assert.True(t, cb.IsOpen())

		called := false
		err := cb.Execute(context.Background(), func() error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, errors.IsType(err, errors.ErrTypeDownstream))
		assert.True(t, stderrors.Is(err, ErrOpen))
	})

	t.Run("client errors do not trip", func(t *testing.T) {
		cb := NewGoBreaker("test-client", Config{MaxFailures: 1, Timeout: time.Minute, MaxConcurrentRequests: 1}, logger)

		for i := 0; i < 5; i++ {
			_ = cb.Execute(context.Background(), func() error {
				return errors.MissingDestinationError()
			})
		}

		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("transitions to half-open", func(t *testing.T) {
		cb := NewGoBreaker("test-half-open", Config{MaxFailures: 1, Timeout: 50 * time.Millisecond, MaxConcurrentRequests: 1}, logger)

		_ = cb.Execute(context.Background(), func() error { return errors.TimeoutError("forward", nil) })
		assert.Equal(t, StateOpen, cb.State())

		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, StateHalfOpen, cb.State())

		assert.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("done context skips the call", func(t *testing.T) {
		cb := NewGoBreaker("test-cancelled", Config{MaxFailures: 1, Timeout: time.Minute, MaxConcurrentRequests: 1}, logger)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := cb.Execute(ctx, func() error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, errors.IsType(err, errors.ErrTypeDownstream))
		assert.True(t, stderrors.Is(err, context.Canceled))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("invalid config falls back to defaults", func(t *testing.T) {
		cb := NewGoBreaker("test-invalid", Config{}, logger)
		assert.Equal(t, StateClosed, cb.State())
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(7).String())
}
