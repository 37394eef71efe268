// Package metrics exposes prometheus instrumentation for the gatekeeper.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webhook-gatekeeper/internal/common/errors"
)

const namespace = "webhook_gatekeeper"

type Metrics struct {
	registry *prometheus.Registry

	Deliveries      *prometheus.CounterVec
	Forwards        *prometheus.CounterVec
	ForwardDuration prometheus.Histogram
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Webhook deliveries by terminal outcome",
		}, []string{"outcome"}),
		Forwards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forwards_total",
			Help:      "Forwarding attempts by downstream status class or error type",
		}, []string{"result"}),
		ForwardDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forward_duration_seconds",
			Help:      "Latency of the downstream forwarding call",
			Buckets:   prometheus.DefBuckets,
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOutcome counts a delivery that reached a terminal outcome, e.g.
// "challenge", "fresh", "skip", "stale", "invalid", "malformed".
func (m *Metrics) ObserveOutcome(outcome string) {
	m.Deliveries.WithLabelValues(outcome).Inc()
}

// ObserveForward records a forwarding attempt. status is ignored when err is set.
func (m *Metrics) ObserveForward(status int, duration time.Duration, err error) {
	if err != nil {
		m.Forwards.WithLabelValues(string(errors.GetType(err))).Inc()
		return
	}
	m.Forwards.WithLabelValues(StatusClass(status)).Inc()
	m.ForwardDuration.Observe(duration.Seconds())
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method string, status int, duration time.Duration) {
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// StatusClass maps 204 to "2xx"
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
