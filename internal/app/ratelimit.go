package app

import (
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/common/ratelimit"
)

// initializeRateLimiter creates the inbound limiter when enabled. The redis
// backend falls back to a local limiter if Redis could not be reached.
func (app *App) initializeRateLimiter() error {
	if !app.Config.RateLimitEnabled {
		return nil
	}

	rateLimitConfig := app.Config.RateLimitConfig()

	if rateLimitConfig.Type == ratelimit.BackendRedis {
		if app.RedisClient != nil {
			limiter, err := ratelimit.New(rateLimitConfig, app.RedisClient)
			if err != nil {
				return err
			}
			app.RateLimiter = limiter
			app.logRateLimit(rateLimitConfig)
			return nil
		}
		app.Logger.Warn("Falling back to local rate limiter")
		rateLimitConfig.Type = ratelimit.BackendLocal
	}

	limiter, err := ratelimit.New(rateLimitConfig, nil)
	if err != nil {
		return err
	}
	app.RateLimiter = limiter
	app.logRateLimit(rateLimitConfig)
	return nil
}

func (app *App) logRateLimit(config ratelimit.Config) {
	app.Logger.Info("Rate Limiting: Enabled",
		logging.String("backend", string(config.Type)),
		logging.Int("requests", config.Requests),
		logging.Duration("window", config.Window),
		logging.Bool("trust_proxy_headers", app.Config.TrustProxyHeaders),
	)
}
