package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/repository/memory"
)

type authFixture struct {
	provider *testIdentityProvider
	profiles *testProfileRepo
	store    *testSessionStore
	events   *testPublisher
	auth     *AuthService
	now      time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		provider: newTestIdentityProvider(),
		profiles: newTestProfileRepo(),
		store:    newTestSessionStore(),
		events:   newTestPublisher(),
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	sessions := NewSessionService(f.store, 2*time.Hour)
	sessions.WithClock(func() time.Time { return f.now })

	limiter := NewLoginAttemptLimiter(memory.NewAttemptRepository(), 5, 15*time.Minute)
	limiter.WithClock(func() time.Time { return f.now })

	f.auth = NewAuthService(f.provider, nil, f.profiles, sessions, limiter, f.events, nil)
	f.auth.WithClock(func() time.Time { return f.now })

	return f
}

func TestAuthServiceRegister(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.auth.Register(context.Background(), "jane@example.com", "Str0ng!pw", "Jane Doe")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if !result.IsNewUser {
		t.Fatalf("expected IsNewUser to be true")
	}
	if result.ProfileComplete {
		t.Fatalf("fresh registration must start with an incomplete profile")
	}
	if result.Profile.FirstName != "Jane" || result.Profile.LastName != "Doe" {
		t.Fatalf("display name split mismatch: %q %q", result.Profile.FirstName, result.Profile.LastName)
	}
	if result.Session.Token != result.Identity.Token {
		t.Fatalf("session should wrap the provider token")
	}
	if _, ok := f.store.sessions[result.Identity.Token]; !ok {
		t.Fatalf("session record was not written")
	}
	if len(f.events.userRegistered) != 1 {
		t.Fatalf("expected one UserRegistered event, got %d", len(f.events.userRegistered))
	}
}

func TestAuthServiceRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Register(context.Background(), "jane@example.com", "short", "Jane Doe")
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if len(f.provider.accounts) != 0 {
		t.Fatalf("provider must not be called for a rejected password")
	}
}

func TestAuthServiceRegisterDuplicateEmailPassesProviderCode(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.seed("jane@example.com", "Str0ng!pw", port.SignInMethodPassword)

	_, err := f.auth.Register(context.Background(), "jane@example.com", "Str0ng!pw", "Jane Doe")

	var providerErr *port.ProviderError
	if !errors.As(err, &providerErr) || providerErr.Code != "auth/email-already-in-use" {
		t.Fatalf("expected auth/email-already-in-use pass-through, got %v", err)
	}
}

func TestAuthServicePasswordLoginLockout(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.seed("jane@example.com", "Str0ng!pw", port.SignInMethodPassword)

	for i := 0; i < 5; i++ {
		_, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "wrong", "198.51.100.7")
		var providerErr *port.ProviderError
		if !errors.As(err, &providerErr) || providerErr.Code != "auth/wrong-password" {
			t.Fatalf("attempt %d: expected auth/wrong-password, got %v", i+1, err)
		}
	}

	// Even the correct password is refused once the window budget is spent.
	_, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "Str0ng!pw", "198.51.100.7")
	if !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected ErrTooManyLoginAttempts, got %v", err)
	}

	if len(f.events.logins) != 5 {
		t.Fatalf("expected 5 failed login events, got %d", len(f.events.logins))
	}
}

func TestAuthServicePasswordLoginSuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.seed("jane@example.com", "Str0ng!pw", port.SignInMethodPassword)

	for i := 0; i < 4; i++ {
		if _, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "wrong", "198.51.100.7"); err == nil {
			t.Fatalf("attempt %d: expected failure", i+1)
		}
	}

	result, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "Str0ng!pw", "198.51.100.7")
	if err != nil {
		t.Fatalf("PasswordLogin returned error: %v", err)
	}
	if result.IsNewUser {
		t.Fatalf("login must not report a new user")
	}

	// The success cleared the counter; a fresh run of failures is allowed.
	for i := 0; i < 5; i++ {
		_, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "wrong", "198.51.100.7")
		if errors.Is(err, ErrTooManyLoginAttempts) {
			t.Fatalf("attempt %d after reset should not be rate limited", i+1)
		}
	}
}

// failingResetAttemptStore counts attempts normally but cannot clear them.
type failingResetAttemptStore struct {
	port.AttemptStore
}

func (s *failingResetAttemptStore) ResetOnSuccess(context.Context, string, string) error {
	return errors.New("store unavailable")
}

func TestAuthServicePasswordLoginSucceedsWhenResetFails(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.seed("jane@example.com", "Str0ng!pw", port.SignInMethodPassword)

	store := &failingResetAttemptStore{AttemptStore: memory.NewAttemptRepository()}
	limiter := NewLoginAttemptLimiter(store, 5, 15*time.Minute)
	limiter.WithClock(func() time.Time { return f.now })
	f.auth.limiter = limiter

	result, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "Str0ng!pw", "198.51.100.7")
	if err != nil {
		t.Fatalf("a broken counter reset must not fail the login: %v", err)
	}
	if _, ok := f.store.sessions[result.Session.Token]; !ok {
		t.Fatalf("session record was not written")
	}
}

func TestAuthServicePasswordLoginRecreatesMissingProfile(t *testing.T) {
	f := newAuthFixture(t)
	uid := f.provider.seed("jane@example.com", "Str0ng!pw", port.SignInMethodPassword)

	result, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "Str0ng!pw", "198.51.100.7")
	if err != nil {
		t.Fatalf("PasswordLogin returned error: %v", err)
	}

	if result.Profile.UID != uid {
		t.Fatalf("expected recreated profile for %s, got %s", uid, result.Profile.UID)
	}
	if result.ProfileComplete {
		t.Fatalf("recreated profile must start incomplete")
	}
	if _, err := f.profiles.GetByUID(context.Background(), uid); err != nil {
		t.Fatalf("profile row was not recreated: %v", err)
	}
}

func TestAuthServiceLogout(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.seed("jane@example.com", "Str0ng!pw", port.SignInMethodPassword)

	result, err := f.auth.PasswordLogin(context.Background(), "jane@example.com", "Str0ng!pw", "198.51.100.7")
	if err != nil {
		t.Fatalf("PasswordLogin returned error: %v", err)
	}

	if err := f.auth.Logout(context.Background(), result.Session.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if _, ok := f.store.sessions[result.Session.Token]; ok {
		t.Fatalf("session record should be gone after logout")
	}
	if len(f.provider.signedOut) != 1 {
		t.Fatalf("provider sign-out was not invoked")
	}
	if len(f.events.sessionsEnded) != 1 || f.events.sessionsEnded[0].Reason != "logout" {
		t.Fatalf("expected one SessionEnded event with reason logout")
	}
}
