package port

import (
	"context"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
)

// VerificationStore persists one-time verification codes with logical expiry.
// History is retained for the storage TTL; Latest must return the most
// recently issued record regardless of how many codes exist for the address.
type VerificationStore interface {
	Append(ctx context.Context, code domain.VerificationCode, ttl time.Duration) error
	Latest(ctx context.Context, purpose domain.VerificationPurpose, email string) (*domain.VerificationCode, error)
}
