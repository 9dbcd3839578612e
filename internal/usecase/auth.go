package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/security"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

const (
	loginMethodPassword  = "password"
	loginMethodFederated = "federated"
	loginMethodCode      = "verification_code"
)

// AuthResult is the outcome of a successful authentication flow.
type AuthResult struct {
	Identity        port.Identity
	Profile         domain.Profile
	Session         domain.Session
	ProfileComplete bool
	IsNewUser       bool
}

// AuthService coordinates registration, login, and logout across the identity
// provider, the profile store, and the session layer.
type AuthService struct {
	provider  port.IdentityProvider
	federated port.FederatedProvider
	profiles  port.ProfileRepository
	sessions  *SessionService
	limiter   *LoginAttemptLimiter
	events    port.EventPublisher
	validator *security.PasswordValidator
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. The federated provider
// may be nil when federated login is not configured.
func NewAuthService(
	provider port.IdentityProvider,
	federated port.FederatedProvider,
	profiles port.ProfileRepository,
	sessions *SessionService,
	limiter *LoginAttemptLimiter,
	events port.EventPublisher,
	validator *security.PasswordValidator,
) *AuthService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &AuthService{
		provider:  provider,
		federated: federated,
		profiles:  profiles,
		sessions:  sessions,
		limiter:   limiter,
		events:    events,
		validator: validator,
		now:       time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Register creates a provider account, seeds the onboarding profile, and
// starts a session. The profile starts incomplete regardless of what the
// caller supplied; onboarding flips the flag later.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	if err := s.validator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	identity, err := s.provider.CreateAccount(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	profile := domain.NewProfile(identity.UID, email, displayName, domain.AuthProviderEmail, now)
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	session, err := s.sessions.Start(ctx, identity.Token)
	if err != nil {
		return nil, err
	}

	_ = s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UID:          identity.UID,
		Email:        email,
		DisplayName:  displayName,
		AuthProvider: domain.AuthProviderEmail,
		RegisteredAt: now,
	})

	return &AuthResult{
		Identity:        *identity,
		Profile:         profile,
		Session:         session,
		ProfileComplete: false,
		IsNewUser:       true,
	}, nil
}

// PasswordLogin authenticates email and password credentials. Every attempt
// is counted against the fixed window before the provider is consulted; a
// success clears the counter.
func (s *AuthService) PasswordLogin(ctx context.Context, email, password, clientAddr string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	if err := s.limiter.Allow(ctx, email, clientAddr); err != nil {
		return nil, err
	}

	identity, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		s.publishLogin(ctx, "", email, loginMethodPassword, clientAddr, err)
		return nil, err
	}

	// The provider accepted the credentials; a failed reset only leaves the
	// old count in place, it must not undo the login.
	_ = s.limiter.Reset(ctx, email, clientAddr)

	result, err := s.completeLogin(ctx, identity, domain.AuthProviderEmail)
	if err != nil {
		return nil, err
	}

	s.publishLogin(ctx, identity.UID, email, loginMethodPassword, clientAddr, nil)

	return result, nil
}

// FederatedAuthURL builds the federated provider's consent page URL for the
// supplied state and PKCE challenge.
func (s *AuthService) FederatedAuthURL(state, codeChallenge string) (string, error) {
	if s.federated == nil {
		return "", fmt.Errorf("federated login is not configured")
	}
	if strings.TrimSpace(state) == "" || strings.TrimSpace(codeChallenge) == "" {
		return "", fmt.Errorf("state and code challenge are required")
	}
	return s.federated.AuthCodeURL(state, codeChallenge), nil
}

// FederatedLogin exchanges an authorization code for verified claims and signs
// the user in, creating the profile on first contact. The provider does not
// hand us an opaque session credential here, so the session token is minted
// locally.
func (s *AuthService) FederatedLogin(ctx context.Context, code, codeVerifier, clientAddr string) (*AuthResult, error) {
	if s.federated == nil {
		return nil, fmt.Errorf("federated login is not configured")
	}

	claims, err := s.federated.Exchange(ctx, code, codeVerifier)
	if err != nil {
		s.publishLogin(ctx, "", "", loginMethodFederated, clientAddr, err)
		return nil, err
	}

	email := normalizeEmail(claims.Email)
	displayName := strings.TrimSpace(claims.GivenName + " " + claims.FamilyName)

	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	identity := port.Identity{
		UID:         claims.Subject,
		Email:       email,
		DisplayName: displayName,
		PhotoURL:    claims.Picture,
		Token:       token,
	}

	isNew, err := s.isNewProfile(ctx, identity.UID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	profile := domain.NewProfile(identity.UID, email, displayName, domain.AuthProviderGoogle, now)
	profile.PhotoURL = claims.Picture
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	result, err := s.completeLogin(ctx, &identity, domain.AuthProviderGoogle)
	if err != nil {
		return nil, err
	}
	result.IsNewUser = isNew

	if isNew {
		_ = s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UID:          identity.UID,
			Email:        email,
			DisplayName:  displayName,
			AuthProvider: domain.AuthProviderGoogle,
			RegisteredAt: now,
		})
	}
	s.publishLogin(ctx, identity.UID, email, loginMethodFederated, clientAddr, nil)

	return result, nil
}

// Logout signs the token out of the provider and drops the session record.
// Provider sign-out is best effort; the local record always goes away.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}

	_ = s.provider.SignOut(ctx, token)

	if err := s.sessions.End(ctx, token); err != nil {
		return err
	}

	_ = s.events.PublishSessionEnded(ctx, domain.SessionEndedEvent{
		EventID: uuid.NewString(),
		EndedAt: s.now().UTC(),
		Reason:  "logout",
	})

	return nil
}

// completeLogin loads the profile state and starts the session for an
// authenticated identity.
func (s *AuthService) completeLogin(ctx context.Context, identity *port.Identity, provider domain.AuthProvider) (*AuthResult, error) {
	profile, err := s.profiles.GetByUID(ctx, identity.UID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup profile: %w", err)
		}
		// Provider account without a profile row. Recreate the onboarding
		// record rather than failing the login.
		created := domain.NewProfile(identity.UID, identity.Email, identity.DisplayName, provider, s.now().UTC())
		if err := s.profiles.Upsert(ctx, created); err != nil {
			return nil, fmt.Errorf("store profile: %w", err)
		}
		profile = &created
	}

	session, err := s.sessions.Start(ctx, identity.Token)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Identity:        *identity,
		Profile:         *profile,
		Session:         session,
		ProfileComplete: profile.ProfileComplete,
	}, nil
}

func (s *AuthService) isNewProfile(ctx context.Context, uid string) (bool, error) {
	if _, err := s.profiles.GetByUID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("lookup profile: %w", err)
	}
	return false, nil
}

func (s *AuthService) publishLogin(ctx context.Context, uid, email, method, clientAddr string, cause error) {
	event := domain.LoginEvent{
		EventID:   uuid.NewString(),
		UID:       uid,
		Email:     email,
		Method:    method,
		Succeeded: cause == nil,
		ClientIP:  clientAddr,
		At:        s.now().UTC(),
	}
	if cause != nil {
		event.FailReason = cause.Error()
	}
	_ = s.events.PublishLogin(ctx, event)
}
