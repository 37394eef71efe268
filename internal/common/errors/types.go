package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeMalformedBody represents a request body that is not valid JSON
	ErrTypeMalformedBody ErrorType = "malformed_body"
	// ErrTypeMissingChallengeMaterial represents a challenge without plainToken or secret
	ErrTypeMissingChallengeMaterial ErrorType = "missing_challenge_material"
	// ErrTypeStaleTimestamp represents a delivery outside the freshness window
	ErrTypeStaleTimestamp ErrorType = "stale_timestamp"
	// ErrTypeInvalidSignature represents a delivery whose signature does not match
	ErrTypeInvalidSignature ErrorType = "invalid_signature"
	// ErrTypeMissingDestination represents an unconfigured forwarding destination
	ErrTypeMissingDestination ErrorType = "missing_destination"
	// ErrTypeDownstream represents a failed forwarding call
	ErrTypeDownstream ErrorType = "downstream_unavailable"
	// ErrTypeTimeout represents timeout errors
	ErrTypeTimeout ErrorType = "timeout"
	// ErrTypePayloadTooLarge represents a request body over the configured limit
	ErrTypePayloadTooLarge ErrorType = "payload_too_large"
	// ErrTypeRateLimit represents rate limit errors
	ErrTypeRateLimit ErrorType = "rate_limit"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// MalformedBodyError creates an error for a body that failed JSON decoding
func MalformedBodyError(cause error) *AppError {
	return &AppError{
		Type:    ErrTypeMalformedBody,
		Message: "request body is not valid JSON",
		Cause:   cause,
	}
}

// MissingChallengeMaterialError creates an error for an unanswerable challenge
func MissingChallengeMaterialError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeMissingChallengeMaterial,
		Message: msg,
	}
}

// StaleTimestampError creates an error for a timestamp outside the freshness window
func StaleTimestampError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeStaleTimestamp,
		Message: msg,
	}
}

// InvalidSignatureError creates an error for a signature that failed verification
func InvalidSignatureError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeInvalidSignature,
		Message: msg,
	}
}

// MissingDestinationError creates an error for an unset forwarding URL
func MissingDestinationError() *AppError {
	return &AppError{
		Type:    ErrTypeMissingDestination,
		Message: "destination URL is not configured",
	}
}

// DownstreamError creates an error for a forwarding call that did not complete
func DownstreamError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeDownstream,
		Message: msg,
		Cause:   cause,
	}
}

// TimeoutError creates a new timeout error
func TimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeTimeout,
		Message: fmt.Sprintf("timeout during %s", operation),
		Cause:   cause,
	}
}

// PayloadTooLargeError creates an error for a body over limit bytes
func PayloadTooLargeError(limit int64) *AppError {
	return &AppError{
		Type:    ErrTypePayloadTooLarge,
		Message: fmt.Sprintf("request body exceeds %d bytes", limit),
	}
}

// RateLimitError creates a new rate limit error
func RateLimitError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeRateLimit,
		Message: fmt.Sprintf("rate limit exceeded for %s", resource),
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return ErrTypeInternal
	}

	return appErr.Type
}

type publicError struct {
	status  int
	message string
}

// The response body may only carry the category, never the cause.
var publicErrors = map[ErrorType]publicError{
	ErrTypeMalformedBody:            {http.StatusBadRequest, "Invalid JSON"},
	ErrTypeMissingChallengeMaterial: {http.StatusBadRequest, "Missing plainToken/secret"},
	ErrTypeStaleTimestamp:           {http.StatusUnauthorized, "Stale timestamp"},
	ErrTypeInvalidSignature:         {http.StatusUnauthorized, "Bad signature"},
	ErrTypeMissingDestination:       {http.StatusInternalServerError, "Missing GAS_URL"},
	ErrTypeDownstream:               {http.StatusBadGateway, "Downstream unavailable"},
	ErrTypeTimeout:                  {http.StatusGatewayTimeout, "Downstream timeout"},
	ErrTypePayloadTooLarge:          {http.StatusRequestEntityTooLarge, "Payload too large"},
	ErrTypeRateLimit:                {http.StatusTooManyRequests, "Rate limit exceeded"},
	ErrTypeConfig:                   {http.StatusInternalServerError, "Internal error"},
	ErrTypeInternal:                 {http.StatusInternalServerError, "Internal error"},
}

// HTTPStatus returns the response status code for err
func HTTPStatus(err error) int {
	if p, ok := publicErrors[GetType(err)]; ok {
		return p.status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message that may be shown to the caller for err
func PublicMessage(err error) string {
	if p, ok := publicErrors[GetType(err)]; ok {
		return p.message
	}
	return "Internal error"
}

// IsClientError reports whether err is attributable to the caller
func IsClientError(err error) bool {
	status := HTTPStatus(err)
	return status >= 400 && status < 500
}
