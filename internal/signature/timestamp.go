package signature

import (
	"math"
	"strconv"
	"strings"
	"time"

	"webhook-gatekeeper/internal/common/errors"
)

// DefaultTolerance is the accepted distance between sender and receiver clocks
const DefaultTolerance = 300 * time.Second

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now returns f()
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// TimestampGuard decides whether a Unix-seconds timestamp is fresh
type TimestampGuard struct {
	clock     Clock
	tolerance time.Duration
}

// NewTimestampGuard creates a guard. A nil clock uses SystemClock and a
// non-positive tolerance uses DefaultTolerance.
func NewTimestampGuard(clock Clock, tolerance time.Duration) *TimestampGuard {
	if clock == nil {
		clock = SystemClock
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &TimestampGuard{clock: clock, tolerance: tolerance}
}

// Tolerance returns the configured freshness window
func (g *TimestampGuard) Tolerance() time.Duration {
	return g.tolerance
}

// ParseTimestamp parses a decimal seconds value, rejecting NaN and infinities
func ParseTimestamp(ts string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(ts), 64)
	if err != nil {
		return 0, errors.StaleTimestampError("timestamp is not numeric").WithContext("timestamp", ts)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.StaleTimestampError("timestamp is not finite").WithContext("timestamp", ts)
	}
	return value, nil
}

// Check returns nil iff |now - ts| <= tolerance, with now truncated to whole seconds
func (g *TimestampGuard) Check(ts string) error {
	value, err := ParseTimestamp(ts)
	if err != nil {
		return err
	}

	now := float64(g.clock.Now().Unix())
	skew := math.Abs(now - value)
	if skew > g.tolerance.Seconds() {
		return errors.StaleTimestampError("timestamp outside freshness window").
			WithContext("skew_seconds", skew)
	}
	return nil
}

// Fresh reports whether ts passes Check
func (g *TimestampGuard) Fresh(ts string) bool {
	return g.Check(ts) == nil
}
