// Package signature authenticates webhook deliveries signed with the v0
// scheme.
//
// A sender computes
//
//	"v0=" + hex(HMAC-SHA256(secret, "v0:" + timestamp + ":" + body))
//
// over the exact request body and sends it in the signature header along
// with the timestamp header (Unix seconds). The receiver recomputes the
// digest from the raw bytes it received, never from a re-encoded copy of the
// parsed JSON.
//
// # Outcomes
//
// A Verifier classifies each delivery into one of four outcomes:
//
//   - Skip: no secret configured, no signature header, a header not in v0
//     form, or no timestamp header. The delivery continues unauthenticated
//     unless Config.RequireSignature is set, in which case it is Invalid.
//   - Stale: the timestamp is not numeric or lies more than Tolerance
//     (default 300s) away from the local clock in either direction.
//   - Invalid: the recomputed signature does not match.
//   - Fresh: the timestamp is fresh and the signature matches.
//
// Stale and Invalid stop the pipeline. The error returned for each carries
// the failing check for logs; callers must only expose the category.
//
// # Usage
//
//	verifier := signature.NewVerifier(&signature.Config{Secret: secret}, nil, logger)
//	result, err := verifier.Verify(r.Header, body)
//	if err != nil {
//	    // 401
//	}
//
// Signature comparison uses hmac.Equal.
package signature
