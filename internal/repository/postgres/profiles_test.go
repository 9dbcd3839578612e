package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

func TestProfileRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	profile := domain.Profile{
		UID:          "uid-1",
		Email:        "jane@example.com",
		DisplayName:  "Jane Doe",
		FirstName:    "Jane",
		LastName:     "Doe",
		AuthProvider: "password",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO crealik\.profiles`).
		WithArgs(
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
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), profile); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_GetByUID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"uid", "email", "display_name", "first_name", "last_name",
		"photo_url", "phone_number", "address", "location",
		"profile_complete", "auth_provider", "created_at", "updated_at",
	}).AddRow(
		"uid-1", "jane@example.com", "Jane Doe", "Jane", "Doe",
		"", "", "", "",
		true, "password", now, now,
	)

	mock.ExpectQuery(`SELECT (.+) FROM crealik\.profiles WHERE uid = \$1`).
		WithArgs("uid-1").
		WillReturnRows(rows)

	profile, err := repo.GetByUID(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("GetByUID returned error: %v", err)
	}
	if profile.Email != "jane@example.com" {
		t.Fatalf("unexpected email %s", profile.Email)
	}
	if profile.FirstName != "Jane" || profile.LastName != "Doe" {
		t.Fatalf("unexpected name split %q %q", profile.FirstName, profile.LastName)
	}
	if !profile.ProfileComplete {
		t.Fatalf("expected profile_complete to be true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_GetByUID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	mock.ExpectQuery(`SELECT (.+) FROM crealik\.profiles WHERE uid = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"uid"}))

	if _, err := repo.GetByUID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_IsComplete_MissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProfileRepository(mock)

	mock.ExpectQuery(`SELECT profile_complete FROM crealik\.profiles WHERE uid = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"profile_complete"}))

	complete, err := repo.IsComplete(context.Background(), "missing")
	if err != nil {
		t.Fatalf("IsComplete returned error: %v", err)
	}
	if complete {
		t.Fatalf("missing row must count as incomplete")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
