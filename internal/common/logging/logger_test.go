package logging

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	assert.Equal(t, InfoLevel, config.Level)
	assert.Nil(t, config.Output)
	assert.Equal(t, time.RFC3339, config.TimeFormat)
	assert.False(t, config.JSON)
}

func TestNewZapLogger_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{Level: InfoLevel, Output: &buf, JSON: true})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("forwarded", Int("status", 200), String("event", "meeting.started"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"forwarded"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"event":"meeting.started"`)
}

func TestZapAdapter_WithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerFromCore(core)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	logger.WithContext(ctx).Info("hello")
	logger.WithContext(context.Background()).Info("no id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestZapAdapter_ErrorAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerFromCore(core).WithFields(String("component", "forwarder"))

	logger.Error("forward failed", errors.New("connection refused"), Duration("duration", time.Second))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "forwarder", fields["component"])
	assert.Equal(t, "connection refused", fields["error"])
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestRedacted(t *testing.T) {
	assert.Equal(t, "<redacted>", Redacted("secret", "shh").Value)
	assert.Equal(t, "<unset>", Redacted("secret", "").Value)
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", RequestIDFromContext(ContextWithRequestID(context.Background(), "abc")))
}

func TestInitGlobalLogger_File(t *testing.T) {
	previous := GetGlobalLogger()
	defer SetGlobalLogger(previous)

	path := filepath.Join(t.TempDir(), "gatekeeper.log")
	closer, err := InitGlobalLogger("debug", path, false)
	require.NoError(t, err)
	defer closer.Close()

	Info("written to file")
	MustSync()

	assert.FileExists(t, path)
}
