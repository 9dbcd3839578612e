package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/repository/memory"
)

func TestLoginAttemptLimiterDeniesSixthAttempt(t *testing.T) {
	limiter := NewLoginAttemptLimiter(memory.NewAttemptRepository(), 5, 15*time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); err != nil {
			t.Fatalf("attempt %d unexpectedly denied: %v", i+1, err)
		}
	}

	err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7")
	if !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected ErrTooManyLoginAttempts, got %v", err)
	}
}

func TestLoginAttemptLimiterWindowRollover(t *testing.T) {
	limiter := NewLoginAttemptLimiter(memory.NewAttemptRepository(), 5, 15*time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); err != nil {
			t.Fatalf("attempt %d unexpectedly denied: %v", i+1, err)
		}
	}

	// Still inside the window, including its boundary instant.
	now = now.Add(14 * time.Minute)
	if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected denial inside the window, got %v", err)
	}
	now = now.Add(time.Minute)
	if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected denial at exactly the window length, got %v", err)
	}

	// The window has elapsed; the budget starts over.
	now = now.Add(time.Second)
	if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); err != nil {
		t.Fatalf("expected a fresh window to allow, got %v", err)
	}
}

func TestLoginAttemptLimiterResetRestoresBudget(t *testing.T) {
	limiter := NewLoginAttemptLimiter(memory.NewAttemptRepository(), 5, 15*time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return now })

	for i := 0; i < 4; i++ {
		if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); err != nil {
			t.Fatalf("attempt %d unexpectedly denied: %v", i+1, err)
		}
	}

	if err := limiter.Reset(context.Background(), "user@example.com", "198.51.100.7"); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); err != nil {
			t.Fatalf("post-reset attempt %d unexpectedly denied: %v", i+1, err)
		}
	}
	if err := limiter.Allow(context.Background(), "user@example.com", "198.51.100.7"); !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected denial after the refreshed budget ran out")
	}
}

func TestLoginAttemptLimiterNormalizesEmail(t *testing.T) {
	limiter := NewLoginAttemptLimiter(memory.NewAttemptRepository(), 5, 15*time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background(), "User@Example.COM", "198.51.100.7"); err != nil {
			t.Fatalf("attempt %d unexpectedly denied: %v", i+1, err)
		}
	}

	// Case variants share the key.
	if err := limiter.Allow(context.Background(), " user@example.com ", "198.51.100.7"); !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected case-insensitive key to be locked, got %v", err)
	}
}
