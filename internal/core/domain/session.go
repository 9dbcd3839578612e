package domain

import "time"

// DefaultSessionIdleTimeout is the sliding inactivity window after which a
// session stops validating.
const DefaultSessionIdleTimeout = 2 * time.Hour

// Session tracks a single authenticated session's activity. The token is the
// opaque provider-issued credential; this record is a UX convenience layer,
// the security boundary remains the provider's own token.
type Session struct {
	Token           string
	AuthenticatedAt time.Time
	LastActivityAt  time.Time
	IdleTimeout     time.Duration
}

// StartSession records a fresh authentication at the supplied moment.
func StartSession(token string, now time.Time, idleTimeout time.Duration) Session {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	return Session{
		Token:           token,
		AuthenticatedAt: now,
		LastActivityAt:  now,
		IdleTimeout:     idleTimeout,
	}
}

// ValidAt reports whether the session is still within its idle window at the
// supplied moment. Pure; callers that want sliding expiration must Touch on a
// positive result.
func (s Session) ValidAt(at time.Time) bool {
	timeout := s.IdleTimeout
	if timeout <= 0 {
		timeout = DefaultSessionIdleTimeout
	}
	return at.Sub(s.LastActivityAt) < timeout
}

// Touch pushes the idle deadline forward by refreshing last activity.
func (s *Session) Touch(at time.Time) {
	s.LastActivityAt = at
}
