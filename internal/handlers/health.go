package handlers

import (
	"net/http"
	"time"

	"webhook-gatekeeper/internal/common/logging"
)

// HealthStatus is the readiness document served on /health. It never
// carries the secret or the destination URL.
type HealthStatus struct {
	Status                string                 `json:"status"`
	Timestamp             time.Time              `json:"timestamp"`
	DestinationConfigured bool                   `json:"destinationConfigured"`
	Signature             SignatureStatus        `json:"signature"`
	CircuitBreaker        string                 `json:"circuitBreaker"`
	RateLimit             map[string]interface{} `json:"rateLimit,omitempty"`
}

// SignatureStatus describes the verification mode
type SignatureStatus struct {
	Enabled  bool `json:"enabled"`
	Required bool `json:"required"`
}

// HealthCheck reports readiness. A missing destination or an unreachable
// rate limit backend yields 503.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:                "healthy",
		Timestamp:             time.Now().UTC(),
		DestinationConfigured: h.settings.DestinationConfigured,
		Signature: SignatureStatus{
			Enabled:  h.settings.SignatureEnabled,
			Required: h.settings.SignatureRequired,
		},
		CircuitBreaker: "disabled",
	}

	code := http.StatusOK
	if !h.settings.DestinationConfigured {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	if h.breaker != nil {
		status.CircuitBreaker = h.breaker.State().String()
	}

	if h.limiter != nil {
		status.RateLimit = h.limiter.Stats()
		if err := h.limiter.Health(); err != nil {
			h.logger.WithContext(r.Context()).Warn("Rate limiter unhealthy", logging.Err(err))
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, status)
}
