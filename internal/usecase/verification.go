package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	uuid "github.com/google/uuid"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/logger"
	"github.com/Redabouizer/crealik-auth/internal/infra/security"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

const (
	// DefaultCodeTTL is how long an issued verification code stays valid.
	DefaultCodeTTL = 15 * time.Minute
	// DefaultCodeHistoryTTL is how long issued codes are physically retained.
	DefaultCodeHistoryTTL = 24 * time.Hour
)

// CodeLoginStatus classifies the outcome of a verification-code login.
type CodeLoginStatus string

const (
	// CodeLoginCompleted means a session was started.
	CodeLoginCompleted CodeLoginStatus = "completed"
	// CodeLoginRequiresPassword means the code checked out but the account is
	// password-based, so the caller must finish with a password login.
	CodeLoginRequiresPassword CodeLoginStatus = "requires_password"
	// CodeLoginRequiresFederated means the account was created through a
	// federated provider and must sign in there.
	CodeLoginRequiresFederated CodeLoginStatus = "requires_federated_sign_in"
)

// CodeLoginResult is the outcome of CodeLogin. Auth is set only when Status
// is CodeLoginCompleted.
type CodeLoginResult struct {
	Status CodeLoginStatus
	Email  string
	Auth   *AuthResult
}

// VerificationService issues and checks one-time email codes. Issuance only
// persists the code and announces it on the bus; delivery belongs to the
// mailer consuming those events and a broken bus never fails issuance. Codes
// stay checkable until expiry, they are not consumed on use.
type VerificationService struct {
	codes      port.VerificationStore
	provider   port.IdentityProvider
	auth       *AuthService
	events     port.EventPublisher
	codeTTL    time.Duration
	historyTTL time.Duration
	now        func() time.Time
}

// NewVerificationService constructs a verification service. Non-positive TTLs
// fall back to the defaults.
func NewVerificationService(
	codes port.VerificationStore,
	provider port.IdentityProvider,
	auth *AuthService,
	events port.EventPublisher,
	codeTTL, historyTTL time.Duration,
) *VerificationService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	if historyTTL <= 0 {
		historyTTL = DefaultCodeHistoryTTL
	}
	return &VerificationService{
		codes:      codes,
		provider:   provider,
		auth:       auth,
		events:     events,
		codeTTL:    codeTTL,
		historyTTL: historyTTL,
		now:        time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *VerificationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// IssueLoginCode issues a fresh login code for the address and returns its
// expiry. The response is identical whether or not an account exists, so
// issuance does not leak registration state.
func (s *VerificationService) IssueLoginCode(ctx context.Context, email string) (time.Time, error) {
	return s.issue(ctx, email, domain.VerificationPurposeLogin)
}

// IssueResetCode issues a fresh password-reset code for the address.
func (s *VerificationService) IssueResetCode(ctx context.Context, email string) (time.Time, error) {
	return s.issue(ctx, email, domain.VerificationPurposePasswordReset)
}

func (s *VerificationService) issue(ctx context.Context, email string, purpose domain.VerificationPurpose) (time.Time, error) {
	email = normalizeEmail(email)
	if email == "" {
		return time.Time{}, fmt.Errorf("email is required")
	}

	value, err := security.GenerateVerificationCode()
	if err != nil {
		return time.Time{}, fmt.Errorf("generate verification code: %w", err)
	}

	now := s.now().UTC()
	code := domain.VerificationCode{
		Email:     email,
		Code:      value,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}

	if err := s.codes.Append(ctx, code, s.historyTTL); err != nil {
		return time.Time{}, fmt.Errorf("store verification code: %w", err)
	}

	// Delivery is best effort. The stored record is authoritative; a failed
	// publish leaves the code valid and the caller may request another.
	_ = s.events.PublishCodeIssued(ctx, domain.CodeIssuedEvent{
		EventID:     uuid.NewString(),
		Email:       email,
		MaskedEmail: logger.MaskEmail(email),
		Purpose:     purpose,
		IssuedAt:    now,
		ExpiresAt:   code.ExpiresAt,
	})

	return code.ExpiresAt, nil
}

// Check verifies the supplied value against the most recently issued code for
// the purpose and address. Older codes never validate, even while unexpired.
func (s *VerificationService) Check(ctx context.Context, purpose domain.VerificationPurpose, email, supplied string) error {
	email = normalizeEmail(email)
	if email == "" || supplied == "" {
		return ErrInvalidOrExpiredCode
	}

	latest, err := s.codes.Latest(ctx, purpose, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("lookup verification code: %w", err)
	}

	if !latest.Matches(supplied, s.now().UTC()) {
		return ErrInvalidOrExpiredCode
	}

	return nil
}

// CodeLogin signs a user in with an emailed code. A fresh address gets a new
// provider account backed by an unguessable generated password. An existing
// account cannot be given a provider session from a code alone, so the result
// reports which sign-in method must finish the flow instead.
func (s *VerificationService) CodeLogin(ctx context.Context, email, supplied, clientAddr string) (*CodeLoginResult, error) {
	email = normalizeEmail(email)
	if err := s.Check(ctx, domain.VerificationPurposeLogin, email, supplied); err != nil {
		return nil, err
	}

	methods, err := s.provider.SignInMethods(ctx, email)
	if err != nil {
		return nil, err
	}

	switch {
	case len(methods) == 0:
		// New address. Provision an account the user can only enter through
		// codes or a later password reset.
		password, err := security.GenerateUnusablePassword()
		if err != nil {
			return nil, fmt.Errorf("generate placeholder password: %w", err)
		}

		identity, err := s.provider.CreateAccount(ctx, email, password, "")
		if err != nil {
			return nil, err
		}

		result, err := s.auth.completeLogin(ctx, identity, domain.AuthProviderEmail)
		if err != nil {
			return nil, err
		}
		result.IsNewUser = true

		_ = s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UID:          identity.UID,
			Email:        email,
			AuthProvider: domain.AuthProviderEmail,
			RegisteredAt: s.now().UTC(),
		})
		s.auth.publishLogin(ctx, identity.UID, email, loginMethodCode, clientAddr, nil)

		return &CodeLoginResult{Status: CodeLoginCompleted, Email: email, Auth: result}, nil

	case slices.Contains(methods, port.SignInMethodPassword):
		return &CodeLoginResult{Status: CodeLoginRequiresPassword, Email: email}, nil

	default:
		return &CodeLoginResult{Status: CodeLoginRequiresFederated, Email: email}, nil
	}
}

// ResetPasswordWithCode rotates the account password after checking the reset
// code. The new password has to clear the strict policy since users pick it
// themselves outside a registration form.
func (s *VerificationService) ResetPasswordWithCode(ctx context.Context, email, supplied, newPassword string) error {
	email = normalizeEmail(email)
	if err := s.Check(ctx, domain.VerificationPurposePasswordReset, email, supplied); err != nil {
		return err
	}

	if err := security.StrictPasswordValidator(email).Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	if err := s.provider.UpdatePassword(ctx, email, newPassword); err != nil {
		return err
	}

	_ = s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		Email:     email,
		ChangedAt: s.now().UTC(),
		Method:    "reset_code",
	})

	return nil
}
