package port

import (
	"context"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
)

// ProfileRepository exposes persistence behavior for user profile records.
type ProfileRepository interface {
	// Upsert writes the profile, merging over any existing record for the UID.
	Upsert(ctx context.Context, profile domain.Profile) error
	GetByUID(ctx context.Context, uid string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// IsComplete reports the profileComplete flag; absent records count as incomplete.
	IsComplete(ctx context.Context, uid string) (bool, error)
}
