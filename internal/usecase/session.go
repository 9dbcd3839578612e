package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

// SessionService manages activity records for authenticated sessions. The
// record is a UX convenience layer over the provider's own token lifetime;
// validity is decided by the pure domain.Session timestamp check.
type SessionService struct {
	sessions    port.SessionStore
	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessionService constructs a session service with the provided store and
// idle timeout. A non-positive timeout falls back to the domain default.
func NewSessionService(sessions port.SessionStore, idleTimeout time.Duration) *SessionService {
	if idleTimeout <= 0 {
		idleTimeout = domain.DefaultSessionIdleTimeout
	}
	return &SessionService{
		sessions:    sessions,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Start records a fresh authentication for the token.
func (s *SessionService) Start(ctx context.Context, token string) (domain.Session, error) {
	session := domain.StartSession(token, s.now().UTC(), s.idleTimeout)
	if err := s.sessions.Put(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Validate reports whether the token's session is inside its idle window. A
// valid check refreshes last activity, so expiration slides with use; an
// expired record is removed so later checks fail fast.
func (s *SessionService) Validate(ctx context.Context, token string) (bool, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup session: %w", err)
	}

	now := s.now().UTC()
	if !session.ValidAt(now) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			return false, fmt.Errorf("remove expired session: %w", err)
		}
		return false, nil
	}

	session.Touch(now)
	if err := s.sessions.Put(ctx, *session); err != nil {
		return false, fmt.Errorf("refresh session: %w", err)
	}

	return true, nil
}

// End removes the session record for the token. Ending an unknown token is
// not an error; logout must stay idempotent.
func (s *SessionService) End(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
