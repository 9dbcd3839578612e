package port

import (
	"context"
	"time"
)

// AttemptStore tracks fixed-window login attempt counters keyed by
// (email, client address). Implementations must make CheckAndRecord atomic so
// counters stay correct across concurrent request handlers and instances.
type AttemptStore interface {
	// CheckAndRecord applies the window rules for the key at the supplied
	// moment: an elapsed window resets the counter, a counter at or above
	// limit denies without incrementing, anything else increments and allows.
	CheckAndRecord(ctx context.Context, email, clientAddr string, limit int, window time.Duration, now time.Time) (allowed bool, err error)
	// ResetOnSuccess zeroes the counter for the key, keeping the window start.
	ResetOnSuccess(ctx context.Context, email, clientAddr string) error
}
