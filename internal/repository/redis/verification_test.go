package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

func issuedAt(t *testing.T, repo *VerificationRepository, email, value string, created time.Time) {
	t.Helper()

	code := domain.VerificationCode{
		Email:     email,
		Code:      value,
		Purpose:   domain.VerificationPurposeLogin,
		CreatedAt: created,
		ExpiresAt: created.Add(15 * time.Minute),
	}
	if err := repo.Append(context.Background(), code, 24*time.Hour); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
}

func TestVerificationRepositoryLatestWins(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewVerificationRepository(client, "verify")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuedAt(t, repo, "user@example.com", "111111", base)
	issuedAt(t, repo, "user@example.com", "222222", base.Add(time.Minute))

	latest, err := repo.Latest(context.Background(), domain.VerificationPurposeLogin, "user@example.com")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if latest.Code != "222222" {
		t.Fatalf("expected most recent code 222222, got %s", latest.Code)
	}

	// The earlier record is retained but never surfaced.
	if !latest.Matches("222222", base.Add(2*time.Minute)) {
		t.Fatalf("latest code should validate inside its window")
	}
	if latest.Matches("111111", base.Add(2*time.Minute)) {
		t.Fatalf("superseded code must not validate")
	}
}

func TestVerificationRepositoryExpiryBoundary(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewVerificationRepository(client, "verify")

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuedAt(t, repo, "user@example.com", "123456", created)

	latest, err := repo.Latest(context.Background(), domain.VerificationPurposeLogin, "user@example.com")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}

	if !latest.Matches("123456", created.Add(14*time.Minute+59*time.Second)) {
		t.Fatalf("code should validate one second before expiry")
	}
	if latest.Matches("123456", created.Add(15*time.Minute+time.Second)) {
		t.Fatalf("code must not validate past expiry")
	}
}

func TestVerificationRepositoryPurposesAreSeparate(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewVerificationRepository(client, "verify")

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuedAt(t, repo, "user@example.com", "123456", created)

	if _, err := repo.Latest(context.Background(), domain.VerificationPurposePasswordReset, "user@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the reset purpose, got %v", err)
	}
}

func TestVerificationRepositoryHistoryTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewVerificationRepository(client, "verify")

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuedAt(t, repo, "user@example.com", "123456", created)

	remaining := server.TTL("verify:login:user@example.com")
	if remaining <= 0 || remaining > 24*time.Hour {
		t.Fatalf("expected history ttl within (0, 24h], got %v", remaining)
	}
}
