package signature

import (
	"net/http"

	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
)

// Outcome is the terminal state of verifying one delivery
type Outcome int

const (
	// OutcomeSkip means the delivery proceeds unauthenticated
	OutcomeSkip Outcome = iota
	// OutcomeFresh means the timestamp is fresh and the signature matches
	OutcomeFresh
	// OutcomeStale means the timestamp is not numeric or outside the window
	OutcomeStale
	// OutcomeInvalid means the signature does not match
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkip:
		return "skip"
	case OutcomeFresh:
		return "fresh"
	case OutcomeStale:
		return "stale"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Permits reports whether the delivery may continue to forwarding
func (o Outcome) Permits() bool {
	return o == OutcomeSkip || o == OutcomeFresh
}

// Skip reasons
const (
	ReasonNoSecret         = "no secret configured"
	ReasonNoSignature      = "no signature header"
	ReasonUnprefixed       = "signature header not in v0 form"
	ReasonNoTimestamp      = "no timestamp header"
	ReasonSignatureMatched = "signature matched"
)

// Result describes how a delivery was classified
type Result struct {
	Outcome Outcome
	Reason  string
}

// Verifier authenticates deliveries signed with the v0 scheme
type Verifier struct {
	config *Config
	codec  *Codec
	guard  *TimestampGuard
	logger logging.Logger
}

// NewVerifier creates a new signature verifier
func NewVerifier(config *Config, clock Clock, logger logging.Logger) *Verifier {
	if config == nil {
		config = &Config{}
	}
	config.SetDefaults()

	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	v := &Verifier{
		config: config,
		guard:  NewTimestampGuard(clock, config.Tolerance),
		logger: logger.WithFields(logging.String("component", "signature")),
	}
	if config.Secret != "" {
		v.codec = NewCodec(config.Secret)
	}
	return v
}

// Enabled reports whether deliveries can be authenticated at all
func (v *Verifier) Enabled() bool {
	return v.codec != nil
}

// Required reports whether unauthenticated deliveries are rejected
func (v *Verifier) Required() bool {
	return v.config.RequireSignature
}

// Verify classifies a delivery. For OutcomeStale and OutcomeInvalid the
// returned error is a StaleTimestamp or InvalidSignature AppError; the
// caller must stop the pipeline.
func (v *Verifier) Verify(header http.Header, body []byte) (Result, error) {
	sig := header.Get(v.config.SignatureHeader)
	ts := header.Get(v.config.TimestampHeader)

	if reason, skip := v.skipReason(sig, ts); skip {
		if v.config.RequireSignature {
			return Result{Outcome: OutcomeInvalid, Reason: reason},
				errors.InvalidSignatureError("signature required: " + reason)
		}
		return Result{Outcome: OutcomeSkip, Reason: reason}, nil
	}

	if err := v.guard.Check(ts); err != nil {
		return Result{Outcome: OutcomeStale, Reason: err.Error()}, err
	}

	expected := v.codec.Sign(ts, body)
	if !v.codec.Equal(expected, sig) {
		return Result{Outcome: OutcomeInvalid, Reason: "signature mismatch"},
			errors.InvalidSignatureError("signature mismatch").
				WithContext("header", v.config.SignatureHeader)
	}

	return Result{Outcome: OutcomeFresh, Reason: ReasonSignatureMatched}, nil
}

func (v *Verifier) skipReason(sig, ts string) (string, bool) {
	switch {
	case v.codec == nil:
		return ReasonNoSecret, true
	case sig == "":
		return ReasonNoSignature, true
	case !HasPrefix(sig):
		return ReasonUnprefixed, true
	case ts == "":
		return ReasonNoTimestamp, true
	}
	return "", false
}
