package app

import (
	"context"

	"webhook-gatekeeper/internal/challenge"
	"webhook-gatekeeper/internal/circuitbreaker"
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/common/ratelimit"
	"webhook-gatekeeper/internal/config"
	"webhook-gatekeeper/internal/forwarder"
	"webhook-gatekeeper/internal/gatekeeper"
	"webhook-gatekeeper/internal/handlers"
	"webhook-gatekeeper/internal/metrics"
	"webhook-gatekeeper/internal/redis"
	"webhook-gatekeeper/internal/signature"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Metrics     *metrics.Metrics
	RedisClient *redis.Client
	RateLimiter ratelimit.Limiter
	Breaker     *circuitbreaker.GoBreakerAdapter
	Forwarder   *forwarder.Forwarder
	Verifier    *signature.Verifier
	Dispatcher  *gatekeeper.Dispatcher
	Handlers    *handlers.Handlers
	Logger      logging.Logger

	clock signature.Clock
}

// Option configures an App
type Option func(*App)

// WithClock replaces the wall clock used for freshness checks
func WithClock(clock signature.Clock) Option {
	return func(app *App) {
		app.clock = clock
	}
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
		clock:  signature.SystemClock,
	}
	for _, opt := range opts {
		opt(app)
	}

	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}

	if err := app.initializeRedis(); err != nil {
		// Redis is optional, the limiter falls back to local
		app.Logger.Warn("Redis initialization failed, continuing without Redis", logging.Err(err))
	}

	if err := app.initializeRateLimiter(); err != nil {
		return nil, err
	}

	app.initializeForwarding()
	app.initializeDispatcher()

	return app, nil
}

func (app *App) initializeForwarding() {
	opts := []forwarder.Option{
		forwarder.WithHTTPClient(newForwardClient(app.Config.ForwardTimeout)),
	}

	if app.Config.CircuitBreakerEnabled {
		app.Breaker = circuitbreaker.NewGoBreaker("forwarder", circuitbreaker.DefaultConfig(), app.Logger)
		opts = append(opts, forwarder.WithCircuitBreaker(app.Breaker))
	}

	app.Forwarder = forwarder.New(app.Config.DestinationURL, opts...)
	if !app.Forwarder.Configured() {
		app.Logger.Warn("GAS_URL is not set; non-challenge deliveries will fail with 500")
	}
}

func (app *App) initializeDispatcher() {
	app.Verifier = signature.NewVerifier(app.Config.SignatureConfig(), app.clock, nil)

	var opts []gatekeeper.Option
	if app.Metrics != nil {
		opts = append(opts, gatekeeper.WithRecorder(app.Metrics))
	}
	app.Dispatcher = gatekeeper.New(
		challenge.NewResponder(app.Config.WebhookSecret),
		app.Verifier,
		app.Forwarder,
		opts...,
	)

	handlerOpts := []handlers.Option{}
	if app.Breaker != nil {
		handlerOpts = append(handlerOpts, handlers.WithBreaker(app.Breaker))
	}
	if app.RateLimiter != nil {
		handlerOpts = append(handlerOpts, handlers.WithLimiter(app.RateLimiter))
	}
	app.Handlers = handlers.New(app.Dispatcher, handlers.Settings{
		MaxBodyBytes:          app.Config.MaxBodyBytes,
		DestinationConfigured: app.Forwarder.Configured(),
		SignatureEnabled:      app.Verifier.Enabled(),
		SignatureRequired:     app.Verifier.Required(),
	}, handlerOpts...)
}

// Shutdown releases resources held by the application
func (app *App) Shutdown(ctx context.Context) error {
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Error closing Redis client", logging.Err(err))
			return err
		}
		app.Logger.Info("Redis client closed")
	}
	return nil
}
