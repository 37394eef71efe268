package forwarder

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhook-gatekeeper/internal/circuitbreaker"
	"webhook-gatekeeper/internal/common/errors"
	commonhttp "webhook-gatekeeper/internal/common/http"
	"webhook-gatekeeper/internal/common/logging"
)

func TestForward_RelaysBodyVerbatim(t *testing.T) {
	body := []byte("{\"event\":\"meeting.started\",  \"payload\": {\"n\": 1.0}}\n")

	var gotBody []byte
	var gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("downstream secret body"))
	}))
	defer server.Close()

	f := New(server.URL, WithLogger(logging.NewNopLogger()))
	result, err := f.Forward(context.Background(), body)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, body, gotBody)
	assert.Equal(t, http.StatusAccepted, result.StatusCode)
	assert.True(t, result.OK)
}

func TestForward_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result, err := New(server.URL, WithLogger(logging.NewNopLogger())).Forward(context.Background(), []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.False(t, result.OK)
}

func TestForward_MissingDestination(t *testing.T) {
	f := New("", WithLogger(logging.NewNopLogger()))

	result, err := f.Forward(context.Background(), []byte(`{}`))

	assert.Nil(t, result)
	assert.False(t, f.Configured())
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingDestination))
}

func TestForward_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url, WithLogger(logging.NewNopLogger())).Forward(context.Background(), []byte(`{}`))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDownstream))
}

func TestForward_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := commonhttp.NewHTTPClient(commonhttp.WithTimeout(50 * time.Millisecond))
	_, err := New(server.URL, WithHTTPClient(client), WithLogger(logging.NewNopLogger())).
		Forward(context.Background(), []byte(`{}`))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeTimeout))
}

func TestForward_IgnoresCallerCancellation(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(server.URL, WithLogger(logging.NewNopLogger())).Forward(ctx, []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestForward_SingleAttempt(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, WithLogger(logging.NewNopLogger())).Forward(context.Background(), []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestForward_CircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger := logging.NewNopLogger()
	breaker := circuitbreaker.NewGoBreaker("forward-test", circuitbreaker.Config{
		MaxFailures:           2,
		Timeout:               time.Minute,
		MaxConcurrentRequests: 1,
	}, logger)
	f := New(url, WithCircuitBreaker(breaker), WithLogger(logger))

	for i := 0; i < 2; i++ {
		_, err := f.Forward(context.Background(), []byte(`{}`))
		require.Error(t, err)
	}
	assert.True(t, breaker.IsOpen())

	_, err := f.Forward(context.Background(), []byte(`{}`))
	assert.True(t, errors.IsType(err, errors.ErrTypeDownstream))
	assert.True(t, stderrors.Is(err, circuitbreaker.ErrOpen))
}

func TestForward_InvalidDestination(t *testing.T) {
	_, err := New("http://[::1", WithLogger(logging.NewNopLogger())).Forward(context.Background(), []byte(`{}`))

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeInternal))
}
