// Package logging provides structured logging using zap
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// NewDefaultLogger creates a logger with default configuration using zap
func NewDefaultLogger() Logger {
	logger, err := NewZapLogger(DefaultLogConfig())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default zap logger: %v", err))
	}
	return logger
}

// InitGlobalLogger initializes the global logger from a level name and an
// optional log file. An empty file name logs to stdout. The returned closer
// releases the file, if one was opened.
func InitGlobalLogger(levelName, fileName string, jsonOutput bool) (io.Closer, error) {
	level := ParseLevel(levelName)

	var output io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if fileName != "" {
		file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", fileName, err)
		}
		output = file
		closer = file
	}

	logger, err := NewZapLogger(LogConfig{
		Level:      level,
		Output:     output,
		TimeFormat: time.RFC3339,
		JSON:       jsonOutput,
	})
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetGlobalLogger(logger)

	logger.Info("Logger initialized",
		String("level", level.String()),
		String("log_file", fileName),
	)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MustSync flushes any buffered log entries for zap loggers
// This should be called before application exit
func MustSync() {
	logger := GetGlobalLogger()
	if zapLogger, ok := logger.(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}

// WithContext is a convenience function to add context to the global logger
func WithContext(ctx context.Context) Logger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithFields is a convenience function to add fields to the global logger
func WithFields(fields ...Field) Logger {
	return GetGlobalLogger().WithFields(fields...)
}

// Err creates an error field with key "error"
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Redacted creates a field that records only whether a secret value is set
func Redacted(key, value string) Field {
	if value == "" {
		return Field{Key: key, Value: "<unset>"}
	}
	return Field{Key: key, Value: "<redacted>"}
}
