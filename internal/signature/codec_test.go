package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func referenceHMAC(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACHex(t *testing.T) {
	got := HMACHex([]byte("shh"), []byte("abc123"))

	assert.Equal(t, referenceHMAC("shh", "abc123"), got)
	assert.Len(t, got, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", got)
}

func TestHMACHex_KnownVector(t *testing.T) {
	// RFC 4231 test case 2
	got := HMACHex([]byte("Jefe"), []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestSignedMessage(t *testing.T) {
	body := []byte(`{"event":"meeting.started", "payload":{}}`)

	assert.Equal(t, `v0:1700000000:{"event":"meeting.started", "payload":{}}`, string(SignedMessage("1700000000", body)))
	assert.Equal(t, "v0:1:", string(SignedMessage("1", nil)))
}

func TestCodec_Sign(t *testing.T) {
	codec := NewCodec("shh")
	body := []byte(`{"a":1}`)

	sig := codec.Sign("1700000000", body)

	assert.True(t, HasPrefix(sig))
	assert.Equal(t, "v0="+referenceHMAC("shh", `v0:1700000000:{"a":1}`), sig)
}

func TestCodec_Equal(t *testing.T) {
	codec := NewCodec("shh")

	assert.True(t, codec.Equal("v0=abc", "v0=abc"))
	assert.False(t, codec.Equal("v0=abc", "v0=abd"))
	assert.False(t, codec.Equal("v0=abc", "V0=abc"))
	assert.False(t, codec.Equal("v0=abc", "v0=abc "))
	assert.False(t, codec.Equal("v0=abc", ""))
}

func TestCodec_EveryByteMatters(t *testing.T) {
	codec := NewCodec("shh")
	body := []byte(`{"event":"recording.completed","payload":{"id":42}}`)
	original := codec.Sign("1700000000", body)

	for i := range body {
		tampered := append([]byte(nil), body...)
		tampered[i] ^= 0x01
		assert.NotEqual(t, original, codec.Sign("1700000000", tampered), "byte %d", i)
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("v0=deadbeef"))
	assert.True(t, HasPrefix("v0="))
	assert.False(t, HasPrefix("v1=deadbeef"))
	assert.False(t, HasPrefix("sha256=deadbeef"))
	assert.False(t, HasPrefix(""))
}
