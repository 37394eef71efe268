package middleware

import (
	"net/http"
	"time"
)

// RequestRecorder receives one observation per completed request
type RequestRecorder interface {
	ObserveRequest(method string, status int, duration time.Duration)
}

// Metrics records method, status and latency of every request
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			recorder.ObserveRequest(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
