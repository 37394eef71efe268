package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"webhook-gatekeeper/internal/signature"
)

// DeliveryBuilder helps build signed test deliveries
type DeliveryBuilder struct {
	body          []byte
	secret        string
	timestamp     string
	signature     string
	withTimestamp bool
	withSignature bool
	header        http.Header
}

// NewDelivery creates a builder for body, signed with no secret yet
func NewDelivery(body string) *DeliveryBuilder {
	return &DeliveryBuilder{
		body:          []byte(body),
		timestamp:     strconv.FormatInt(FixedNow.Unix(), 10),
		withTimestamp: true,
		withSignature: true,
		header:        http.Header{},
	}
}

// SignedWith signs the delivery with secret
func (b *DeliveryBuilder) SignedWith(secret string) *DeliveryBuilder {
	b.secret = secret
	return b
}

// At sets the timestamp header to t
func (b *DeliveryBuilder) At(t time.Time) *DeliveryBuilder {
	b.timestamp = strconv.FormatInt(t.Unix(), 10)
	return b
}

// WithRawTimestamp sets the timestamp header verbatim
func (b *DeliveryBuilder) WithRawTimestamp(ts string) *DeliveryBuilder {
	b.timestamp = ts
	return b
}

// WithSignature overrides the computed signature header
func (b *DeliveryBuilder) WithSignature(sig string) *DeliveryBuilder {
	b.signature = sig
	return b
}

// WithoutTimestamp omits the timestamp header
func (b *DeliveryBuilder) WithoutTimestamp() *DeliveryBuilder {
	b.withTimestamp = false
	return b
}

// WithoutSignature omits the signature header
func (b *DeliveryBuilder) WithoutSignature() *DeliveryBuilder {
	b.withSignature = false
	return b
}

// WithHeader adds an arbitrary header
func (b *DeliveryBuilder) WithHeader(key, value string) *DeliveryBuilder {
	b.header.Set(key, value)
	return b
}

// Body returns the raw body
func (b *DeliveryBuilder) Body() []byte {
	return b.body
}

// Header builds the request headers
func (b *DeliveryBuilder) Header() http.Header {
	h := b.header.Clone()
	if b.withTimestamp {
		h.Set(signature.DefaultTimestampHeader, b.timestamp)
	}
	if b.withSignature {
		sig := b.signature
		if sig == "" && b.secret != "" {
			sig = signature.NewCodec(b.secret).Sign(b.timestamp, b.body)
		}
		if sig != "" {
			h.Set(signature.DefaultSignatureHeader, sig)
		}
	}
	return h
}

// Request builds a server-side POST request for handler tests
func (b *DeliveryBuilder) Request(target string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b.body))
	for k, v := range b.Header() {
		req.Header[k] = v
	}
	return req
}

// ClientRequest builds an outbound POST request for url
func (b *DeliveryBuilder) ClientRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b.body))
	if err != nil {
		return nil, err
	}
	for k, v := range b.Header() {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
