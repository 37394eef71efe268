package testutil

import (
	"fmt"
	"time"

	"webhook-gatekeeper/internal/signature"
)

// FixedNow is the wall clock used by deterministic tests
var FixedNow = time.Unix(1_700_000_000, 0)

// FixedClock always returns FixedNow
var FixedClock signature.Clock = signature.ClockFunc(func() time.Time { return FixedNow })

// ClockAt returns a clock frozen at t
func ClockAt(t time.Time) signature.Clock {
	return signature.ClockFunc(func() time.Time { return t })
}

// ChallengeBody is an endpoint validation request for token
func ChallengeBody(token string) string {
	return fmt.Sprintf(`{"event":"endpoint.url_validation","payload":{"plainToken":%q}}`, token)
}

// EventBody is an ordinary event delivery
func EventBody(event string) string {
	return fmt.Sprintf(`{"event":%q,"payload":{"account_id":"acc-1","object":{"id":"123"}}}`, event)
}
