package port

import (
	"context"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
)

// SessionStore persists session activity records keyed by a digest of the
// opaque token. Records carry their own idle timeout; stores may additionally
// expire them physically.
type SessionStore interface {
	Put(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}
