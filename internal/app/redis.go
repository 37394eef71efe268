package app

import (
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/common/ratelimit"
	"webhook-gatekeeper/internal/redis"
)

func (app *App) initializeRedis() error {
	if !app.Config.RateLimitEnabled || app.Config.RateLimitBackend != string(ratelimit.BackendRedis) {
		app.Logger.Info("Redis: Not configured (distributed rate limiting disabled)")
		return nil
	}

	redisClient, err := redis.NewClient(app.Config.RedisConfig())
	if err != nil {
		return err
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected", logging.String("address", app.Config.RedisAddress))
	return nil
}
