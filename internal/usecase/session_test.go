package usecase

import (
	"context"
	"testing"
	"time"
)

func TestSessionServiceSlidingValidation(t *testing.T) {
	store := newTestSessionStore()
	svc := NewSessionService(store, 2*time.Hour)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	if _, err := svc.Start(context.Background(), "token-1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// Each valid check pushes the deadline forward, so repeated activity
	// keeps the session alive well past the original two hours.
	for i := 0; i < 3; i++ {
		now = now.Add(time.Hour + 59*time.Minute)
		valid, err := svc.Validate(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("Validate returned error: %v", err)
		}
		if !valid {
			t.Fatalf("check %d expected valid session", i+1)
		}
	}

	// Two idle hours after the last touch ends it.
	now = now.Add(2 * time.Hour)
	valid, err := svc.Validate(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if valid {
		t.Fatalf("expected session to be invalid at the idle boundary")
	}
}

func TestSessionServiceExpiredSessionIsRemoved(t *testing.T) {
	store := newTestSessionStore()
	svc := NewSessionService(store, 2*time.Hour)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	if _, err := svc.Start(context.Background(), "token-1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	now = now.Add(3 * time.Hour)
	if valid, err := svc.Validate(context.Background(), "token-1"); err != nil || valid {
		t.Fatalf("expected invalid session, got valid=%v err=%v", valid, err)
	}

	if _, ok := store.sessions["token-1"]; ok {
		t.Fatalf("expired session record should have been deleted")
	}
}

func TestSessionServiceUnknownTokenInvalidNotError(t *testing.T) {
	svc := NewSessionService(newTestSessionStore(), 2*time.Hour)

	valid, err := svc.Validate(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if valid {
		t.Fatalf("unknown token must not validate")
	}
}

func TestSessionServiceEndIsIdempotent(t *testing.T) {
	store := newTestSessionStore()
	svc := NewSessionService(store, 2*time.Hour)

	if _, err := svc.Start(context.Background(), "token-1"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := svc.End(context.Background(), "token-1"); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if err := svc.End(context.Background(), "token-1"); err != nil {
		t.Fatalf("second End returned error: %v", err)
	}
}
