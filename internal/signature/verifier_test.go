package signature

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhook-gatekeeper/internal/common/errors"
	"webhook-gatekeeper/internal/common/logging"
)

const testNow = 1_700_000_000

func newTestVerifier(config *Config) *Verifier {
	return NewVerifier(config, fixedClock(testNow), logging.NewNopLogger())
}

func signedHeaders(secret, ts string, body []byte) http.Header {
	h := http.Header{}
	h.Set(DefaultSignatureHeader, NewCodec(secret).Sign(ts, body))
	h.Set(DefaultTimestampHeader, ts)
	return h
}

func TestVerifier_Fresh(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh"})
	body := []byte(`{"event":"meeting.ended"}`)

	result, err := v.Verify(signedHeaders("shh", strconv.Itoa(testNow), body), body)

	require.NoError(t, err)
	assert.Equal(t, OutcomeFresh, result.Outcome)
	assert.True(t, result.Outcome.Permits())
}

func TestVerifier_HeaderNamesAreCaseInsensitive(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh"})
	body := []byte(`{}`)
	ts := strconv.Itoa(testNow)

	h := http.Header{}
	h.Set("X-ZM-SIGNATURE", NewCodec("shh").Sign(ts, body))
	h.Set("X-Zm-Request-Timestamp", ts)

	result, err := v.Verify(h, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFresh, result.Outcome)
}

func TestVerifier_Stale(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh"})
	body := []byte(`{}`)
	ts := strconv.Itoa(testNow - 301)

	result, err := v.Verify(signedHeaders("shh", ts, body), body)

	require.Error(t, err)
	assert.Equal(t, OutcomeStale, result.Outcome)
	assert.False(t, result.Outcome.Permits())
	assert.True(t, errors.IsType(err, errors.ErrTypeStaleTimestamp))
}

func TestVerifier_StaleCheckedBeforeSignature(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh"})
	h := http.Header{}
	h.Set(DefaultSignatureHeader, "v0=not-even-hex")
	h.Set(DefaultTimestampHeader, "garbage")

	result, err := v.Verify(h, []byte(`{}`))

	assert.Equal(t, OutcomeStale, result.Outcome)
	assert.True(t, errors.IsType(err, errors.ErrTypeStaleTimestamp))
}

func TestVerifier_Invalid(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh"})
	body := []byte(`{"event":"meeting.ended"}`)
	ts := strconv.Itoa(testNow)

	t.Run("wrong secret", func(t *testing.T) {
		result, err := v.Verify(signedHeaders("other", ts, body), body)
		assert.Equal(t, OutcomeInvalid, result.Outcome)
		assert.True(t, errors.IsType(err, errors.ErrTypeInvalidSignature))
	})

	t.Run("body changed after signing", func(t *testing.T) {
		h := signedHeaders("shh", ts, body)
		tampered := []byte(`{"event":"meeting.endet"}`)
		result, err := v.Verify(h, tampered)
		assert.Equal(t, OutcomeInvalid, result.Outcome)
		assert.Error(t, err)
	})

	t.Run("re-serialized body", func(t *testing.T) {
		h := signedHeaders("shh", ts, []byte(`{"event": "meeting.ended"}`))
		result, _ := v.Verify(h, body)
		assert.Equal(t, OutcomeInvalid, result.Outcome)
	})

	t.Run("timestamp changed after signing", func(t *testing.T) {
		h := signedHeaders("shh", ts, body)
		h.Set(DefaultTimestampHeader, strconv.Itoa(testNow-1))
		result, _ := v.Verify(h, body)
		assert.Equal(t, OutcomeInvalid, result.Outcome)
	})

	t.Run("uppercase hex", func(t *testing.T) {
		h := signedHeaders("shh", ts, body)
		sig := h.Get(DefaultSignatureHeader)
		h.Set(DefaultSignatureHeader, "v0="+upper(sig[3:]))
		result, _ := v.Verify(h, body)
		assert.Equal(t, OutcomeInvalid, result.Outcome)
	})
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func TestVerifier_Skip(t *testing.T) {
	body := []byte(`{}`)
	ts := strconv.Itoa(testNow)

	testCases := []struct {
		name   string
		secret string
		header http.Header
		reason string
	}{
		{
			name:   "no secret ignores any signature",
			secret: "",
			header: http.Header{sigKey(): {"v0=bogus"}, tsKey(): {"1"}},
			reason: ReasonNoSecret,
		},
		{
			name:   "no signature header",
			secret: "shh",
			header: http.Header{tsKey(): {ts}},
			reason: ReasonNoSignature,
		},
		{
			name:   "unprefixed signature",
			secret: "shh",
			header: http.Header{sigKey(): {"sha256=abc"}, tsKey(): {ts}},
			reason: ReasonUnprefixed,
		},
		{
			name:   "no timestamp header",
			secret: "shh",
			header: http.Header{sigKey(): {"v0=abc"}},
			reason: ReasonNoTimestamp,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestVerifier(&Config{Secret: tc.secret})
			result, err := v.Verify(tc.header, body)

			require.NoError(t, err)
			assert.Equal(t, OutcomeSkip, result.Outcome)
			assert.Equal(t, tc.reason, result.Reason)
			assert.True(t, result.Outcome.Permits())
		})
	}
}

func sigKey() string {
	return http.CanonicalHeaderKey(DefaultSignatureHeader)
}

func tsKey() string {
	return http.CanonicalHeaderKey(DefaultTimestampHeader)
}

func TestVerifier_RequireSignature(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh", RequireSignature: true})
	body := []byte(`{}`)

	result, err := v.Verify(http.Header{}, body)

	assert.Equal(t, OutcomeInvalid, result.Outcome)
	assert.True(t, errors.IsType(err, errors.ErrTypeInvalidSignature))
	assert.True(t, v.Required())

	result, err = v.Verify(signedHeaders("shh", strconv.Itoa(testNow), body), body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFresh, result.Outcome)
}

func TestVerifier_CustomHeaders(t *testing.T) {
	v := newTestVerifier(&Config{Secret: "shh", SignatureHeader: "X-Sig", TimestampHeader: "X-Ts"})
	body := []byte(`{}`)
	ts := strconv.Itoa(testNow)

	h := http.Header{}
	h.Set("X-Sig", NewCodec("shh").Sign(ts, body))
	h.Set("X-Ts", ts)

	result, err := v.Verify(h, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFresh, result.Outcome)
}

func TestConfig_Validate(t *testing.T) {
	config := &Config{RequireSignature: true}
	config.SetDefaults()
	assert.Error(t, config.Validate())

	config = &Config{SignatureHeader: "x-a", TimestampHeader: "X-A"}
	assert.Error(t, config.Validate())

	config = &Config{Secret: "shh"}
	config.SetDefaults()
	assert.NoError(t, config.Validate())
	assert.Equal(t, DefaultTolerance, config.Tolerance)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "skip", OutcomeSkip.String())
	assert.Equal(t, "fresh", OutcomeFresh.String())
	assert.Equal(t, "stale", OutcomeStale.String())
	assert.Equal(t, "invalid", OutcomeInvalid.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
