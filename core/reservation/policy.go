package reservation

import (
	"fmt"
	"time"
)

// Policy holds the externally supplied reservation constraints.
type Policy struct {
	// MinDuration and MaxDuration bound the reservation window length.
	MinDuration time.Duration
	MaxDuration time.Duration
	// MaxAdvance bounds how far ahead a reservation may start.
	MaxAdvance time.Duration
	// GracePeriod is the time after the start before a pending or
	// confirmed reservation is considered missed.
	GracePeriod time.Duration
}

// DefaultPolicy mirrors the standard lot terms.
func DefaultPolicy() Policy {
	return Policy{
		MinDuration: 30 * time.Minute,
		MaxDuration: 24 * time.Hour,
		MaxAdvance:  30 * 24 * time.Hour,
		GracePeriod: 15 * time.Minute,
	}
}

// ValidDuration checks the window length against the policy bounds.
func (p Policy) ValidDuration(start, end time.Time) bool {
	d := end.Sub(start)
	return d >= p.MinDuration && d <= p.MaxDuration
}

// ValidAdvance checks that the start is within the booking horizon.
func (p Policy) ValidAdvance(now, start time.Time) bool {
	return start.Sub(now) <= p.MaxAdvance
}

// Validate rejects nonsensical policies at configuration time.
func (p Policy) Validate() error {
	if p.MinDuration <= 0 || p.MaxDuration < p.MinDuration {
		return fmt.Errorf("invalid duration bounds: min %v, max %v", p.MinDuration, p.MaxDuration)
	}
	if p.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive")
	}
	return nil
}
