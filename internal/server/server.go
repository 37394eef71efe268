package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Server represents an HTTP server
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// DefaultWriteTimeout bounds writing a response when no option overrides it
const DefaultWriteTimeout = 60 * time.Second

// Option configures a Server
type Option func(*http.Server)

// WithWriteTimeout sets how long a handler may take to write its response.
// Zero disables the limit.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(srv *http.Server) {
		srv.WriteTimeout = timeout
	}
}

// New creates a new server instance
func New(handler http.Handler, port string, opts ...Option) *Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return &Server{srv: srv}
}

// Start binds the listener and serves in the background. Bind failures are
// returned directly; later serve failures arrive on the returned channel.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	s.ln = ln

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// WriteTimeout returns the response write limit
func (s *Server) WriteTimeout() time.Duration {
	return s.srv.WriteTimeout
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
