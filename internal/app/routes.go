package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"webhook-gatekeeper/internal/common/ratelimit"
	"webhook-gatekeeper/internal/handlers"
	"webhook-gatekeeper/internal/metrics"
	"webhook-gatekeeper/internal/middleware"
)

// webhookPaths all serve the same pipeline
var webhookPaths = []string{"/", "/webhook", "/api/zoom"}

// SetupRoutes configures all HTTP routes for the application. m and
// rateLimiter may be nil.
func SetupRoutes(router *mux.Router, h *handlers.Handlers, m *metrics.Metrics, rateLimiter ratelimit.Limiter, trustProxy bool) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	// Health and metrics are never rate limited
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	var webhook http.Handler = http.HandlerFunc(h.HandleWebhook)
	if rateLimiter != nil {
		webhook = middleware.RateLimit(rateLimiter, trustProxy)(webhook)
	}

	for _, path := range webhookPaths {
		router.Handle(path, webhook).Methods(http.MethodPost)
		router.HandleFunc(path, h.HandleLiveness).Methods(http.MethodGet, http.MethodHead)
	}
}
