package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/common/ratelimit"
)

// ClientIP returns the address used as the rate limit key. Forwarding
// headers are only honoured when trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			if ip := strings.TrimSpace(ips[0]); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimit rejects requests over the limiter's budget with 429. Limiter
// backend failures are logged and the request is let through.
func RateLimit(limiter ratelimit.Limiter, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r, trustProxy)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logging.WithContext(r.Context()).Warn("Rate limiter unavailable, admitting request",
					logging.Err(err))
			}

			if !allowed {
				logging.WithContext(r.Context()).Warn("Rate limit exceeded", logging.String("client_ip", key))
				rejectErr := errors.RateLimitError(key)
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(errors.HTTPStatus(rejectErr))
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"ok":    false,
					"error": errors.PublicMessage(rejectErr),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
