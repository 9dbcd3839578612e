package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/config"
	"github.com/Redabouizer/crealik-auth/internal/infra/security"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

// Credential is a locally stored account credential. Only the local provider
// uses it; in rest mode the external provider owns all credentials.
type Credential struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	Methods      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialStore persists local provider credentials.
type CredentialStore interface {
	Create(ctx context.Context, cred Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string, at time.Time) error
}

// LocalProvider is a development identity provider backed by the credential
// store. It issues HS256 session tokens so the rest of the service behaves
// exactly as it does against the remote provider.
type LocalProvider struct {
	store       CredentialStore
	tokenSecret []byte
	tokenTTL    time.Duration
	issuer      string
	now         func() time.Time
}

// NewLocalProvider constructs the local identity provider.
func NewLocalProvider(store CredentialStore, cfg config.IdentitySettings, issuer string) *LocalProvider {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LocalProvider{
		store:       store,
		tokenSecret: []byte(cfg.TokenSecret),
		tokenTTL:    ttl,
		issuer:      issuer,
		now:         time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (p *LocalProvider) WithClock(clock func() time.Time) {
	if clock != nil {
		p.now = clock
	}
}

// CreateAccount hashes the password and stores a new credential.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*port.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &port.ProviderError{Code: "auth/invalid-email", Message: "email is required"}
	}

	if existing, err := p.store.GetByEmail(ctx, email); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup credential: %w", err)
	} else if existing != nil {
		return nil, &port.ProviderError{Code: "auth/email-already-in-use", Message: "the email address is already in use"}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := p.now().UTC()
	cred := Credential{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Methods:      []string{port.SignInMethodPassword},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.Create(ctx, cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	token, err := p.mintToken(cred.UID, email)
	if err != nil {
		return nil, err
	}

	return &port.Identity{UID: cred.UID, Email: email, DisplayName: displayName, Token: token}, nil
}

// Authenticate verifies the password and mints a session token.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*port.Identity, error) {
	cred, err := p.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &port.ProviderError{Code: "auth/user-not-found", Message: "no account for this email"}
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	ok, err := security.VerifyPassword(password, cred.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, &port.ProviderError{Code: "auth/wrong-password", Message: "the password is invalid"}
	}

	token, err := p.mintToken(cred.UID, cred.Email)
	if err != nil {
		return nil, err
	}

	return &port.Identity{
		UID:         cred.UID,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
		Token:       token,
	}, nil
}

// UpdatePassword rotates the stored credential hash.
func (p *LocalProvider) UpdatePassword(ctx context.Context, email, newPassword string) error {
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := p.store.UpdatePasswordHash(ctx, strings.TrimSpace(email), hash, p.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &port.ProviderError{Code: "auth/user-not-found", Message: "no account for this email"}
		}
		return fmt.Errorf("update credential: %w", err)
	}
	return nil
}

// SignInMethods lists the registered methods for the address. An empty slice
// means the account does not exist.
func (p *LocalProvider) SignInMethods(ctx context.Context, email string) ([]string, error) {
	cred, err := p.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}
	return cred.Methods, nil
}

// SignOut is a no-op locally; tokens simply age out.
func (p *LocalProvider) SignOut(context.Context, string) error {
	return nil
}

type localClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (p *LocalProvider) mintToken(uid, email string) (string, error) {
	now := p.now().UTC()
	claims := localClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

var _ port.IdentityProvider = (*LocalProvider)(nil)
