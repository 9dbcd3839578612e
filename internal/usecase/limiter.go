package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
)

const (
	// DefaultLoginAttemptLimit caps failed logins per email and client address pair.
	DefaultLoginAttemptLimit = 5
	// DefaultLoginAttemptWindow is the fixed window those attempts are counted in.
	DefaultLoginAttemptWindow = 15 * time.Minute
)

// LoginAttemptLimiter enforces the fixed-window attempt budget for password
// logins. Counting is delegated to the injected store so multi-instance
// deployments share one budget per key.
type LoginAttemptLimiter struct {
	attempts port.AttemptStore
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewLoginAttemptLimiter constructs a limiter over the provided store.
// Non-positive limit or window fall back to the defaults.
func NewLoginAttemptLimiter(attempts port.AttemptStore, limit int, window time.Duration) *LoginAttemptLimiter {
	if limit <= 0 {
		limit = DefaultLoginAttemptLimit
	}
	if window <= 0 {
		window = DefaultLoginAttemptWindow
	}
	return &LoginAttemptLimiter{
		attempts: attempts,
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (l *LoginAttemptLimiter) WithClock(clock func() time.Time) {
	if clock != nil {
		l.now = clock
	}
}

// Allow records an attempt for the key and reports whether it may proceed.
// A denied attempt is not recorded, so hammering a locked key never extends
// the lockout.
func (l *LoginAttemptLimiter) Allow(ctx context.Context, email, clientAddr string) error {
	allowed, err := l.attempts.CheckAndRecord(ctx, normalizeEmail(email), clientAddr, l.limit, l.window, l.now().UTC())
	if err != nil {
		return fmt.Errorf("check login attempts: %w", err)
	}
	if !allowed {
		return ErrTooManyLoginAttempts
	}
	return nil
}

// Reset clears the counter for the key after a successful login. The window
// start is preserved so a success does not grant a fresh budget mid-window.
func (l *LoginAttemptLimiter) Reset(ctx context.Context, email, clientAddr string) error {
	if err := l.attempts.ResetOnSuccess(ctx, normalizeEmail(email), clientAddr); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
