// Package config loads the gatekeeper's settings from environment variables.
//
// Values are read once at startup and whitespace-trimmed. The resulting
// Config is injected into every component; nothing reads the environment
// afterwards.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Log file path (default: stdout)
//   - LOG_FORMAT: "console" or "json" (default: console)
//   - METRICS_ENABLED: Serve /metrics (default: true)
//
// Verification:
//   - ZOOM_WEBHOOK_SECRET or WEBHOOK_SECRET: Shared validation secret
//   - REQUIRE_SIGNATURE: Reject unsigned deliveries (default: false)
//   - SIGNATURE_HEADER: default x-zm-signature
//   - TIMESTAMP_HEADER: default x-zm-request-timestamp
//   - TIMESTAMP_TOLERANCE: Freshness window (default: 300s)
//
// Forwarding:
//   - GAS_URL or DESTINATION_URL: Downstream URL
//   - FORWARD_TIMEOUT: Client timeout, 0 disables (default: 30s)
//   - MAX_BODY_BYTES: Request body cap (default: 1048576)
//   - CIRCUIT_BREAKER_ENABLED: default true
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: default false
//   - RATE_LIMIT_BACKEND: "local" or "redis" (default: local)
//   - RATE_LIMIT_REQUESTS: Requests per window per client (default: 600)
//   - RATE_LIMIT_WINDOW: default 60s
//   - RATE_LIMIT_BURST: Local bucket depth (default: 20)
//   - TRUST_PROXY_HEADERS: Key on X-Forwarded-For (default: false)
//   - REDIS_ADDRESS, REDIS_PASSWORD, REDIS_DB
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/common/ratelimit"
	"webhook-gatekeeper/internal/redis"
	"webhook-gatekeeper/internal/signature"
)

// Config holds all configuration values for the gatekeeper
type Config struct {
	// Application settings
	Port           string
	LogLevel       string
	LogFile        string
	LogFormat      string
	MetricsEnabled bool

	// Verification
	WebhookSecret      string
	RequireSignature   bool
	SignatureHeader    string
	TimestampHeader    string
	TimestampTolerance time.Duration

	// Forwarding
	DestinationURL        string
	ForwardTimeout        time.Duration
	MaxBodyBytes          int64
	CircuitBreakerEnabled bool

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitBackend  string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
	TrustProxyHeaders bool

	// Redis configuration for the distributed rate limiter
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	loadErrs []error
}

// Load creates a Config from environment variables. Unparseable values are
// kept at their defaults and reported by Validate.
func Load() *Config {
	l := &loader{}
	c := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "console")),
		MetricsEnabled: l.boolean("METRICS_ENABLED", true),

		WebhookSecret:      getEnv("ZOOM_WEBHOOK_SECRET", getEnv("WEBHOOK_SECRET", "")),
		RequireSignature:   l.boolean("REQUIRE_SIGNATURE", false),
		SignatureHeader:    getEnv("SIGNATURE_HEADER", signature.DefaultSignatureHeader),
		TimestampHeader:    getEnv("TIMESTAMP_HEADER", signature.DefaultTimestampHeader),
		TimestampTolerance: l.duration("TIMESTAMP_TOLERANCE", signature.DefaultTolerance),

		DestinationURL:        getEnv("GAS_URL", getEnv("DESTINATION_URL", "")),
		ForwardTimeout:        l.duration("FORWARD_TIMEOUT", 30*time.Second),
		MaxBodyBytes:          l.int64("MAX_BODY_BYTES", 1<<20),
		CircuitBreakerEnabled: l.boolean("CIRCUIT_BREAKER_ENABLED", true),

		RateLimitEnabled:  l.boolean("RATE_LIMIT_ENABLED", false),
		RateLimitBackend:  strings.ToLower(getEnv("RATE_LIMIT_BACKEND", string(ratelimit.BackendLocal))),
		RateLimitRequests: int(l.int64("RATE_LIMIT_REQUESTS", 600)),
		RateLimitWindow:   l.duration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBurst:    int(l.int64("RATE_LIMIT_BURST", 20)),
		TrustProxyHeaders: l.boolean("TRUST_PROXY_HEADERS", false),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(l.int64("REDIS_DB", 0)),
	}
	c.loadErrs = l.errs
	return c
}

// getEnv returns the trimmed value of key, or defaultValue when unset or blank
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

type loader struct {
	errs []error
}

func (l *loader) boolean(key string, defaultValue bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return parsed
}

// duration accepts Go duration syntax or a bare number of seconds
func (l *loader) duration(key string, defaultValue time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s must be a valid duration (e.g., '300s', '5m'), got %q", key, value))
		return defaultValue
	}
	return parsed
}

func (l *loader) int64(key string, defaultValue int64) int64 {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return parsed
}

// Validate reports the first problem that would make startup unsafe. A
// missing destination URL is allowed; it fails per request instead.
func (c *Config) Validate() error {
	if len(c.loadErrs) > 0 {
		return errors.ConfigError(c.loadErrs[0].Error())
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return errors.ConfigError("PORT must be a valid port number between 1 and 65535")
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.ConfigError("LOG_FORMAT must be 'console' or 'json'")
	}

	if c.TimestampTolerance <= 0 {
		return errors.ConfigError("TIMESTAMP_TOLERANCE must be positive")
	}
	if err := c.SignatureConfig().Validate(); err != nil {
		return err
	}

	if c.DestinationURL != "" {
		u, err := url.Parse(c.DestinationURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.ConfigError("GAS_URL must be an absolute http(s) URL")
		}
	}
	if c.ForwardTimeout < 0 {
		return errors.ConfigError("FORWARD_TIMEOUT must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.ConfigError("MAX_BODY_BYTES must be a positive number")
	}

	if c.RateLimitEnabled {
		switch ratelimit.BackendType(c.RateLimitBackend) {
		case ratelimit.BackendLocal:
		case ratelimit.BackendRedis:
			if c.RedisAddress == "" {
				return errors.ConfigError("REDIS_ADDRESS is required for the redis rate limit backend")
			}
			if c.RedisDB < 0 || c.RedisDB > 15 {
				return errors.ConfigError("REDIS_DB must be a number between 0 and 15")
			}
		default:
			return errors.ConfigError("RATE_LIMIT_BACKEND must be 'local' or 'redis'")
		}
		if c.RateLimitRequests < 1 {
			return errors.ConfigError("RATE_LIMIT_REQUESTS must be a positive number")
		}
		if c.RateLimitBurst < 0 {
			return errors.ConfigError("RATE_LIMIT_BURST must not be negative")
		}
		if c.RateLimitWindow <= 0 {
			return errors.ConfigError("RATE_LIMIT_WINDOW must be positive")
		}
	}

	return nil
}

// SignatureConfig returns the verifier settings
func (c *Config) SignatureConfig() *signature.Config {
	return &signature.Config{
		Secret:           c.WebhookSecret,
		SignatureHeader:  c.SignatureHeader,
		TimestampHeader:  c.TimestampHeader,
		Tolerance:        c.TimestampTolerance,
		RequireSignature: c.RequireSignature,
	}
}

// RateLimitConfig returns the limiter settings
func (c *Config) RateLimitConfig() ratelimit.Config {
	return ratelimit.Config{
		Enabled:  c.RateLimitEnabled,
		Requests: c.RateLimitRequests,
		Window:   c.RateLimitWindow,
		Burst:    c.RateLimitBurst,
		Type:     ratelimit.BackendType(c.RateLimitBackend),
	}
}

// RedisConfig returns the redis client settings
func (c *Config) RedisConfig() *redis.Config {
	return &redis.Config{
		Address:  c.RedisAddress,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// LogFields describes the configuration for the startup log. Secrets are
// reported only as set or unset.
func (c *Config) LogFields() []logging.Field {
	return []logging.Field{
		logging.String("port", c.Port),
		logging.Redacted("webhook_secret", c.WebhookSecret),
		logging.Bool("require_signature", c.RequireSignature),
		logging.Duration("timestamp_tolerance", c.TimestampTolerance),
		logging.Bool("destination_configured", c.DestinationURL != ""),
		logging.Duration("forward_timeout", c.ForwardTimeout),
		logging.Int64("max_body_bytes", c.MaxBodyBytes),
		logging.Bool("circuit_breaker", c.CircuitBreakerEnabled),
		logging.Bool("rate_limit", c.RateLimitEnabled),
		logging.Bool("metrics", c.MetricsEnabled),
	}
}

// String implements fmt.Stringer without exposing secrets
func (c *Config) String() string {
	secret := "<unset>"
	if c.WebhookSecret != "" {
		secret = "<redacted>"
	}
	return fmt.Sprintf("Config{Port:%s WebhookSecret:%s RequireSignature:%t DestinationConfigured:%t RateLimit:%t}",
		c.Port, secret, c.RequireSignature, c.DestinationURL != "", c.RateLimitEnabled)
}
