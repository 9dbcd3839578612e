package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

// ProfileRepository implements port.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProfileRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ProfileRepository) WithTx(tx pgx.Tx) *ProfileRepository {
	if tx == nil {
		return r
	}
	return &ProfileRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Upsert writes the profile row. On conflict the incoming non-empty fields win
// and existing values survive where the incoming value is blank, so a repeat
// federated sign-in never wipes data collected during onboarding.
func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.Profile) error {
	query := r.builder.Insert("crealik.profiles").
		Columns(
			"uid",
			"email",
			"display_name",
			"first_name",
			"last_name",
			"photo_url",
			"phone_number",
			"address",
			"location",
			"profile_complete",
			"auth_provider",
			"created_at",
			"updated_at",
		).
		Values(
			profile.UID,
			profile.Email,
			profile.DisplayName,
			profile.FirstName,
			profile.LastName,
			profile.PhotoURL,
			profile.PhoneNumber,
			profile.Address,
			profile.Location,
			profile.ProfileComplete,
			profile.AuthProvider,
			profile.CreatedAt,
			profile.UpdatedAt,
		).
		Suffix(`ON CONFLICT (uid) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), crealik.profiles.email),
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), crealik.profiles.display_name),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), crealik.profiles.first_name),
			last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), crealik.profiles.last_name),
			photo_url = COALESCE(NULLIF(EXCLUDED.photo_url, ''), crealik.profiles.photo_url),
			phone_number = COALESCE(NULLIF(EXCLUDED.phone_number, ''), crealik.profiles.phone_number),
			address = COALESCE(NULLIF(EXCLUDED.address, ''), crealik.profiles.address),
			location = COALESCE(NULLIF(EXCLUDED.location, ''), crealik.profiles.location),
			profile_complete = crealik.profiles.profile_complete OR EXCLUDED.profile_complete,
			auth_provider = crealik.profiles.auth_provider,
			updated_at = EXCLUDED.updated_at`)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// GetByUID retrieves a profile by provider identifier.
func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	stmt, args, err := r.selectProfile().
		Where(squirrel.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	return r.scanProfile(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves a profile by email address.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	stmt, args, err := r.selectProfile().
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile by email sql: %w", err)
	}

	return r.scanProfile(r.exec.QueryRow(ctx, stmt, args...))
}

// IsComplete reports the profile_complete flag. A missing row counts as
// incomplete rather than an error so login flows can branch on it directly.
func (r *ProfileRepository) IsComplete(ctx context.Context, uid string) (bool, error) {
	stmt, args, err := r.builder.Select("profile_complete").
		From("crealik.profiles").
		Where(squirrel.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select profile_complete sql: %w", err)
	}

	var complete bool
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&complete); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan profile_complete: %w", err)
	}

	return complete, nil
}

func (r *ProfileRepository) selectProfile() squirrel.SelectBuilder {
	return r.builder.Select(
		"uid",
		"email",
		"display_name",
		"first_name",
		"last_name",
		"photo_url",
		"phone_number",
		"address",
		"location",
		"profile_complete",
		"auth_provider",
		"created_at",
		"updated_at",
	).From("crealik.profiles")
}

func (r *ProfileRepository) scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.UID,
		&profile.Email,
		&profile.DisplayName,
		&profile.FirstName,
		&profile.LastName,
		&profile.PhotoURL,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.Location,
		&profile.ProfileComplete,
		&profile.AuthProvider,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	return &profile, nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
