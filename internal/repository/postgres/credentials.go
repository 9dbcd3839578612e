package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Redabouizer/crealik-auth/internal/infra/identity"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

// CredentialRepository implements identity.CredentialStore using PostgreSQL.
// Only the local identity provider touches this table.
type CredentialRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCredentialRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewCredentialRepository(exec pgExecutor) *CredentialRepository {
	return &CredentialRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new credential row.
func (r *CredentialRepository) Create(ctx context.Context, cred identity.Credential) error {
	stmt, args, err := r.builder.Insert("crealik.credentials").
		Columns(
			"uid",
			"email",
			"display_name",
			"password_hash",
			"methods",
			"created_at",
			"updated_at",
		).
		Values(
			cred.UID,
			cred.Email,
			cred.DisplayName,
			cred.PasswordHash,
			cred.Methods,
			cred.CreatedAt,
			cred.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert credential sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}

	return nil
}

// GetByEmail retrieves a credential by email address.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	stmt, args, err := r.builder.Select(
		"uid",
		"email",
		"display_name",
		"password_hash",
		"methods",
		"created_at",
		"updated_at",
	).
		From("crealik.credentials").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	var cred identity.Credential
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&cred.UID,
		&cred.Email,
		&cred.DisplayName,
		&cred.PasswordHash,
		&cred.Methods,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	return &cred, nil
}

// UpdatePasswordHash rotates the stored hash for the address.
func (r *CredentialRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string, at time.Time) error {
	stmt, args, err := r.builder.Update("crealik.credentials").
		Set("password_hash", passwordHash).
		Set("updated_at", at).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update credential sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ identity.CredentialStore = (*CredentialRepository)(nil)
