package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/security"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

const (
	defaultSessionPrefix = "session"

	fieldAuthenticatedAt = "authenticated_at"
	fieldLastActivityAt  = "last_activity_at"
	fieldIdleTimeoutMS   = "idle_timeout_ms"
)

// SessionRepository implements port.SessionStore on Redis hashes keyed by a
// token digest. The raw token never reaches Redis. Physical expiry is a
// garbage-collection layer on top of the record's own idle window.
type SessionRepository struct {
	client *red.Client
	prefix string
}

// NewSessionRepository constructs a repository with the provided Redis client and key prefix.
func NewSessionRepository(client *red.Client, keyPrefix string) *SessionRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}

	return &SessionRepository{client: client, prefix: prefix}
}

// Put stores the session record and refreshes its physical TTL.
func (r *SessionRepository) Put(ctx context.Context, session domain.Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}

	timeout := session.IdleTimeout
	if timeout <= 0 {
		timeout = domain.DefaultSessionIdleTimeout
	}

	key := r.key(session.Token)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldAuthenticatedAt: strconv.FormatInt(session.AuthenticatedAt.Unix(), 10),
		fieldLastActivityAt:  strconv.FormatInt(session.LastActivityAt.Unix(), 10),
		fieldIdleTimeoutMS:   strconv.FormatInt(timeout.Milliseconds(), 10),
	})
	pipe.Expire(ctx, key, timeout)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store session: %w", err)
	}

	return nil
}

// Get retrieves the session record for the supplied token.
func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("session token is required")
	}

	values, err := r.client.HGetAll(ctx, r.key(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall session: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	authenticatedAt, err := parseUnix(values[fieldAuthenticatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse authenticated_at: %w", err)
	}

	lastActivityAt, err := parseUnix(values[fieldLastActivityAt])
	if err != nil {
		return nil, fmt.Errorf("parse last_activity_at: %w", err)
	}

	timeoutMS, err := strconv.ParseInt(values[fieldIdleTimeoutMS], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse idle_timeout_ms: %w", err)
	}

	return &domain.Session{
		Token:           token,
		AuthenticatedAt: authenticatedAt,
		LastActivityAt:  lastActivityAt,
		IdleTimeout:     time.Duration(timeoutMS) * time.Millisecond,
	}, nil
}

// Delete removes the session record. Deleting an absent record is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session token is required")
	}

	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}

	return nil
}

func (r *SessionRepository) key(token string) string {
	return fmt.Sprintf("%s:%s", r.prefix, security.HashToken(token))
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}

var _ port.SessionStore = (*SessionRepository)(nil)
