// Package challenge answers the endpoint-ownership challenge.
package challenge

import (
	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/envelope"
	"webhook-gatekeeper/internal/signature"
)

// Response is returned verbatim to the platform
type Response struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// Responder derives encryptedToken from the shared secret
type Responder struct {
	secret []byte
}

// NewResponder creates a responder for secret. An empty secret makes every
// challenge fail with MissingChallengeMaterial.
func NewResponder(secret string) *Responder {
	return &Responder{secret: []byte(secret)}
}

// Respond answers env, which must be a challenge envelope carrying a
// plainToken.
func (r *Responder) Respond(env *envelope.Envelope) (*Response, error) {
	token, ok := env.PlainToken()
	if !ok {
		return nil, errors.MissingChallengeMaterialError("payload.plainToken missing or not a string")
	}
	if len(r.secret) == 0 {
		return nil, errors.MissingChallengeMaterialError("validation secret not configured")
	}

	return &Response{
		PlainToken:     token,
		EncryptedToken: signature.HMACHex(r.secret, []byte(token)),
	}, nil
}
