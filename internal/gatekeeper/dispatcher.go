// Package gatekeeper turns one webhook delivery into exactly one reply.
//
// Order per request: parse the body; answer a challenge event and stop;
// otherwise verify the signature and stop on Stale or Invalid; otherwise
// forward the raw body and report the downstream status.
package gatekeeper

import (
	"context"
	"net/http"
	"time"

	"webhook-gatekeeper/internal/challenge"
	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
	"webhook-gatekeeper/internal/envelope"
	"webhook-gatekeeper/internal/forwarder"
	"webhook-gatekeeper/internal/signature"
)

// Relay forwards a verified body downstream
type Relay interface {
	Forward(ctx context.Context, body []byte) (*forwarder.Result, error)
}

// Recorder receives per-delivery observations
type Recorder interface {
	ObserveOutcome(outcome string)
	ObserveForward(status int, duration time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOutcome(string) {}
func (nopRecorder) ObserveForward(int, time.Duration, error) {}

// Outcome labels beyond the signature outcomes
const (
	OutcomeChallenge = "challenge"
	OutcomeMalformed = "malformed"
	OutcomeRejected  = "challenge_rejected"
)

// Reply is the single response produced for a delivery
type Reply struct {
	Status int
	Body   any
}

// ForwardResponse is returned after a forwarding call completed
type ForwardResponse struct {
	OK              bool `json:"ok"`
	ForwardedStatus int  `json:"forwardedStatus"`
}

// ErrorResponse is returned for every terminal failure
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ErrorReply renders err as a Reply without exposing its cause
func ErrorReply(err error) Reply {
	return Reply{
		Status: errors.HTTPStatus(err),
		Body:   ErrorResponse{OK: false, Error: errors.PublicMessage(err)},
	}
}

// Dispatcher orchestrates the verification pipeline. It holds no mutable
// state and is safe for concurrent use.
type Dispatcher struct {
	responder *challenge.Responder
	verifier  *signature.Verifier
	relay     Relay
	recorder  Recorder
	logger    logging.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithRecorder sets the metrics recorder
func WithRecorder(recorder Recorder) Option {
	return func(d *Dispatcher) {
		if recorder != nil {
			d.recorder = recorder
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a dispatcher
func New(responder *challenge.Responder, verifier *signature.Verifier, relay Relay, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		responder: responder,
		verifier:  verifier,
		relay:     relay,
		recorder:  nopRecorder{},
		logger:    logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithFields(logging.String("component", "dispatcher"))
	return d
}

// Dispatch runs the pipeline for one delivery
func (d *Dispatcher) Dispatch(ctx context.Context, delivery envelope.RawDelivery) Reply {
	logger := d.logger.WithContext(ctx)

	env, err := envelope.Parse(delivery.Body)
	if err != nil {
		logger.Warn("Rejected malformed body", logging.Err(err), logging.Int("bytes", len(delivery.Body)))
		d.recorder.ObserveOutcome(OutcomeMalformed)
		return ErrorReply(err)
	}

	if env.IsChallenge() {
		return d.answerChallenge(logger, env)
	}

	result, err := d.verifier.Verify(delivery.Header, delivery.Body)
	d.recorder.ObserveOutcome(result.Outcome.String())
	if err != nil {
		logger.Warn("Rejected delivery",
			logging.String("outcome", result.Outcome.String()),
			logging.String("reason", result.Reason),
			logging.String("event", env.Event),
		)
		return ErrorReply(err)
	}
	logger.Debug("Signature check passed",
		logging.String("outcome", result.Outcome.String()),
		logging.String("reason", result.Reason),
	)

	return d.forward(ctx, logger, env, delivery.Body)
}

func (d *Dispatcher) answerChallenge(logger logging.Logger, env *envelope.Envelope) Reply {
	resp, err := d.responder.Respond(env)
	if err != nil {
		logger.Warn("Cannot answer endpoint validation", logging.Err(err))
		d.recorder.ObserveOutcome(OutcomeRejected)
		return ErrorReply(err)
	}

	logger.Info("Answered endpoint validation")
	d.recorder.ObserveOutcome(OutcomeChallenge)
	return Reply{Status: http.StatusOK, Body: resp}
}

func (d *Dispatcher) forward(ctx context.Context, logger logging.Logger, env *envelope.Envelope, body []byte) Reply {
	result, err := d.relay.Forward(ctx, body)
	if err != nil {
		d.recorder.ObserveForward(0, 0, err)
		if errors.IsType(err, errors.ErrTypeMissingDestination) {
			logger.Error("Destination URL not configured", err)
		} else {
			logger.Error("Forwarding failed", err, logging.String("event", env.Event))
		}
		return ErrorReply(err)
	}

	d.recorder.ObserveForward(result.StatusCode, result.Duration, nil)
	fields := []logging.Field{
		logging.String("event", env.Event),
		logging.Int("forwarded_status", result.StatusCode),
		logging.Duration("duration", result.Duration),
	}
	if result.OK {
		logger.Info("Forwarded delivery", fields...)
	} else {
		logger.Warn("Downstream returned non-success status", fields...)
	}

	return Reply{
		Status: http.StatusOK,
		Body:   ForwardResponse{OK: true, ForwardedStatus: result.StatusCode},
	}
}
