package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "session")

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	session := domain.Session{
		Token:           "opaque-session-token",
		AuthenticatedAt: started,
		LastActivityAt:  started.Add(30 * time.Minute),
		IdleTimeout:     2 * time.Hour,
	}

	if err := repo.Put(context.Background(), session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := repo.Get(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !got.AuthenticatedAt.Equal(session.AuthenticatedAt) {
		t.Fatalf("authenticated_at mismatch: got %v want %v", got.AuthenticatedAt, session.AuthenticatedAt)
	}
	if !got.LastActivityAt.Equal(session.LastActivityAt) {
		t.Fatalf("last_activity_at mismatch: got %v want %v", got.LastActivityAt, session.LastActivityAt)
	}
	if got.IdleTimeout != session.IdleTimeout {
		t.Fatalf("idle timeout mismatch: got %v want %v", got.IdleTimeout, session.IdleTimeout)
	}
	if got.Token != session.Token {
		t.Fatalf("token mismatch: got %s", got.Token)
	}
}

func TestSessionRepositoryStoresDigestNotToken(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "session")

	session := domain.StartSession("opaque-session-token", time.Now().UTC(), 2*time.Hour)
	if err := repo.Put(context.Background(), session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	for _, key := range server.Keys() {
		if strings.Contains(key, session.Token) {
			t.Fatalf("raw token leaked into redis key %q", key)
		}
	}
}

func TestSessionRepositoryPhysicalTTLTracksIdleTimeout(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionRepository(client, "session")

	session := domain.StartSession("opaque-session-token", time.Now().UTC(), 2*time.Hour)
	if err := repo.Put(context.Background(), session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	keys := server.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one session key, got %d", len(keys))
	}
	remaining := server.TTL(keys[0])
	if remaining <= 0 || remaining > 2*time.Hour {
		t.Fatalf("expected ttl within (0, 2h], got %v", remaining)
	}
}

func TestSessionRepositoryDelete(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "session")

	session := domain.StartSession("opaque-session-token", time.Now().UTC(), 2*time.Hour)
	if err := repo.Put(context.Background(), session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := repo.Delete(context.Background(), session.Token); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.Get(context.Background(), session.Token); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an already-absent record stays silent.
	if err := repo.Delete(context.Background(), session.Token); err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
}
