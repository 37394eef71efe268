// Package forwarder relays verified webhook bodies to the downstream endpoint.
package forwarder

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"webhook-gatekeeper/internal/circuitbreaker"
	"webhook-gatekeeper/internal/common/errors"
	commonhttp "webhook-gatekeeper/internal/common/http"
	"webhook-gatekeeper/internal/common/logging"
)

// maxDrainBytes bounds how much of a downstream response is read before the
// connection is released.
const maxDrainBytes = 64 << 10

// Result reports the downstream outcome. The downstream body is never kept.
type Result struct {
	StatusCode int
	OK         bool
	Duration   time.Duration
}

// Forwarder posts raw bodies to a single destination. It makes exactly one
// attempt per call.
type Forwarder struct {
	destination string
	client      *http.Client
	breaker     *circuitbreaker.GoBreakerAdapter
	logger      logging.Logger
}

// Option configures a Forwarder
type Option func(*Forwarder)

// WithHTTPClient sets the client used for the outbound call
func WithHTTPClient(client *http.Client) Option {
	return func(f *Forwarder) {
		f.client = client
	}
}

// WithCircuitBreaker routes every call through breaker
func WithCircuitBreaker(breaker *circuitbreaker.GoBreakerAdapter) Option {
	return func(f *Forwarder) {
		f.breaker = breaker
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(f *Forwarder) {
		f.logger = logger
	}
}

// New creates a forwarder for destination. An empty destination is allowed;
// every Forward call then fails with MissingDestination.
func New(destination string, opts ...Option) *Forwarder {
	f := &Forwarder{destination: destination}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = commonhttp.NewDefaultHTTPClient()
	}
	if f.logger == nil {
		f.logger = logging.GetGlobalLogger()
	}
	f.logger = f.logger.WithFields(logging.String("component", "forwarder"))
	return f
}

// Configured reports whether a destination is set
func (f *Forwarder) Configured() bool {
	return f.destination != ""
}

// Forward posts body verbatim with Content-Type application/json. Cancellation
// of ctx is ignored once the call starts; the client timeout still applies.
func (f *Forwarder) Forward(ctx context.Context, body []byte) (*Result, error) {
	if !f.Configured() {
		return nil, errors.MissingDestinationError()
	}

	ctx = context.WithoutCancel(ctx)

	var result *Result
	call := func() error {
		var err error
		result, err = f.post(ctx, body)
		return err
	}

	var err error
	if f.breaker != nil {
		err = f.breaker.Execute(ctx, call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Forwarder) post(ctx context.Context, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.destination, bytes.NewReader(body))
	if err != nil {
		return nil, errors.InternalError("failed to build forward request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return &Result{
		StatusCode: resp.StatusCode,
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		Duration:   time.Since(start),
	}, nil
}

func classify(err error) error {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.TimeoutError("forward", err)
	}
	return errors.DownstreamError("forward request failed", err)
}
