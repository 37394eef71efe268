package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// Version is the signing scheme version carried in both the signed
	// message and the header value
	Version = "v0"

	// Prefix precedes the hex digest in the signature header
	Prefix = Version + "="
)

// HMACHex returns hex(HMAC-SHA256(secret, message)) in lowercase
func HMACHex(secret, message []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedMessage builds "v0:" + timestamp + ":" + body from the untouched
// request body.
func SignedMessage(timestamp string, body []byte) []byte {
	msg := make([]byte, 0, len(Version)+len(timestamp)+len(body)+2)
	msg = append(msg, Version...)
	msg = append(msg, ':')
	msg = append(msg, timestamp...)
	msg = append(msg, ':')
	msg = append(msg, body...)
	return msg
}

// HasPrefix reports whether a header value is in the canonical wire form
func HasPrefix(headerValue string) bool {
	return strings.HasPrefix(headerValue, Prefix)
}

// Codec computes and compares signatures for one shared secret
type Codec struct {
	secret []byte
}

// NewCodec creates a codec keyed by secret
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Digest returns the lowercase hex HMAC of message
func (c *Codec) Digest(message []byte) string {
	return HMACHex(c.secret, message)
}

// Sign returns the header value a sender would attach to body at timestamp
func (c *Codec) Sign(timestamp string, body []byte) string {
	return Prefix + c.Digest(SignedMessage(timestamp, body))
}

// Equal compares two signature strings byte for byte in constant time
func (c *Codec) Equal(expected, received string) bool {
	return hmac.Equal([]byte(expected), []byte(received))
}
