package port

import (
	"context"
	"fmt"
)

// Identity is the provider-owned account referenced by this service.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	// Token is the provider-issued opaque session credential.
	Token string
}

// ProviderError carries an identity provider's native error code through to
// callers unchanged, per the pass-through error contract.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Well-known provider sign-in method names.
const (
	SignInMethodPassword = "password"
	SignInMethodGoogle   = "google.com"
)

// IdentityProvider abstracts the external identity service: account creation,
// password authentication, rotation, and sign-out. Implementations must apply
// explicit timeouts on every remote call.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	UpdatePassword(ctx context.Context, email, newPassword string) error
	// SignInMethods lists the methods registered for the address; an empty
	// slice means no account exists.
	SignInMethods(ctx context.Context, email string) ([]string, error)
	SignOut(ctx context.Context, token string) error
}

// FederatedClaims are the verified identity claims returned by a federated
// provider exchange.
type FederatedClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

// FederatedProvider abstracts an OIDC identity provider used for federated
// sign-in. PKCE is required: callers pass the code_challenge to AuthCodeURL
// and the matching code_verifier to Exchange.
type FederatedProvider interface {
	Name() string
	AuthCodeURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*FederatedClaims, error)
}
