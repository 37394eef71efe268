// Package envelope decodes webhook request bodies.
//
// Parse is the only place the body is interpreted as structured data. All
// other components work with RawDelivery.Body, the bytes exactly as received.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"webhook-gatekeeper/internal/common/errors"
)

// EventURLValidation is the event name of the endpoint-ownership challenge
const EventURLValidation = "endpoint.url_validation"

// RawDelivery is one request body plus its headers. Header lookups are
// case-insensitive.
type RawDelivery struct {
	Body   []byte
	Header http.Header
}

// NewRawDelivery creates a delivery. A nil header is replaced with an empty one.
func NewRawDelivery(body []byte, header http.Header) RawDelivery {
	if header == nil {
		header = http.Header{}
	}
	return RawDelivery{Body: body, Header: header}
}

// Envelope is the decoded body
type Envelope struct {
	// Event is the "event" member when it is a string, otherwise empty
	Event string
	// Payload is the "payload" member when it is an object, otherwise nil
	Payload map[string]any
}

// IsChallenge reports whether the envelope is an endpoint validation request
func (e *Envelope) IsChallenge() bool {
	return e.Event == EventURLValidation
}

// PlainToken returns payload.plainToken when it is a non-empty string
func (e *Envelope) PlainToken() (string, bool) {
	if e.Payload == nil {
		return "", false
	}
	token, ok := e.Payload["plainToken"].(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// utf8BOM is skipped ahead of the JSON text
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes body as a single JSON value. A leading UTF-8 byte order mark
// is ignored. An empty body decodes as an empty object. Bodies that are valid JSON but not objects yield an envelope
// with no event. Any syntax error, including trailing data, is a
// MalformedBody error.
func Parse(body []byte) (*Envelope, error) {
	body = bytes.TrimPrefix(body, utf8BOM)
	if len(body) == 0 {
		return &Envelope{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, errors.MalformedBodyError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
		}
		return nil, errors.MalformedBodyError(err)
	}

	env := &Envelope{}
	if obj, ok := value.(map[string]any); ok {
		env.Event, _ = obj["event"].(string)
		env.Payload, _ = obj["payload"].(map[string]any)
	}
	return env, nil
}
