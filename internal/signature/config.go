package signature

import (
	"net/http"
	"time"

	"webhook-gatekeeper/internal/common/errors"
)

const (
	// DefaultSignatureHeader carries "v0=" + hex digest
	DefaultSignatureHeader = "x-zm-signature"
	// DefaultTimestampHeader carries the sender's Unix-seconds timestamp
	DefaultTimestampHeader = "x-zm-request-timestamp"
)

// Config represents the signature verification configuration
type Config struct {
	// Secret is the shared validation secret. Empty disables verification
	// unless RequireSignature is set.
	Secret string `json:"-"`

	// SignatureHeader is the HTTP header containing the signature
	SignatureHeader string `json:"signature_header"`

	// TimestampHeader is the HTTP header containing the timestamp
	TimestampHeader string `json:"timestamp_header"`

	// Tolerance is the maximum accepted clock distance
	Tolerance time.Duration `json:"tolerance"`

	// RequireSignature turns the unauthenticated pass-through off
	RequireSignature bool `json:"require_signature"`
}

// SetDefaults applies default values to the configuration
func (c *Config) SetDefaults() {
	if c.SignatureHeader == "" {
		c.SignatureHeader = DefaultSignatureHeader
	}
	if c.TimestampHeader == "" {
		c.TimestampHeader = DefaultTimestampHeader
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RequireSignature && c.Secret == "" {
		return errors.ConfigError("a signature is required but no secret is configured")
	}
	if http.CanonicalHeaderKey(c.SignatureHeader) == http.CanonicalHeaderKey(c.TimestampHeader) {
		return errors.ConfigError("signature and timestamp headers must differ")
	}
	return nil
}
