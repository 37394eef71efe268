package handlers

import (
	"context"

	"webhook-gatekeeper/internal/circuitbreaker"
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/common/ratelimit"
	"webhook-gatekeeper/internal/envelope"
	"webhook-gatekeeper/internal/gatekeeper"
)

// DefaultMaxBodyBytes caps a delivery body at 1 MiB
const DefaultMaxBodyBytes int64 = 1 << 20

// Dispatcher produces exactly one reply per delivery
type Dispatcher interface {
	Dispatch(ctx context.Context, delivery envelope.RawDelivery) gatekeeper.Reply
}

// BreakerStatus reports the forwarding circuit state
type BreakerStatus interface {
	State() circuitbreaker.State
}

// Settings are the values the HTTP surface needs from configuration
type Settings struct {
	MaxBodyBytes          int64
	DestinationConfigured bool
	SignatureEnabled      bool
	SignatureRequired     bool
}

type Handlers struct {
	dispatcher Dispatcher
	settings   Settings
	breaker    BreakerStatus
	limiter    ratelimit.Limiter
	logger     logging.Logger
}

// Option configures Handlers
type Option func(*Handlers)

// WithBreaker exposes the breaker state on the health endpoint
func WithBreaker(breaker BreakerStatus) Option {
	return func(h *Handlers) {
		h.breaker = breaker
	}
}

// WithLimiter exposes the limiter on the health endpoint
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(h *Handlers) {
		h.limiter = limiter
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func New(dispatcher Dispatcher, settings Settings, opts ...Option) *Handlers {
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = DefaultMaxBodyBytes
	}

	h := &Handlers{
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithFields(logging.String("component", "handlers"))
	return h
}
