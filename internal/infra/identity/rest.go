package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/config"
)

const defaultRequestTimeout = 10 * time.Second

// RESTProvider talks to an identity-toolkit style HTTP API. Every call runs
// under an explicit timeout on top of whatever deadline the caller carries.
type RESTProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewRESTProvider constructs the remote identity provider adapter.
func NewRESTProvider(cfg config.IdentitySettings, logger *zap.Logger) (*RESTProvider, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("identity base url is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &RESTProvider{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}, nil
}

type restAccountResponse struct {
	UID         string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
}

type restErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *RESTProvider) post(ctx context.Context, endpoint string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal identity request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.baseURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var restErr restErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&restErr); decodeErr != nil || restErr.Error.Message == "" {
			return &port.ProviderError{Code: fmt.Sprintf("auth/http-%d", resp.StatusCode)}
		}
		return &port.ProviderError{Code: providerErrorCode(restErr.Error.Message), Message: restErr.Error.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

// providerErrorCode maps the provider's upper-snake error message to the
// auth/kebab-case codes the web client branches on.
func providerErrorCode(message string) string {
	head := message
	if idx := strings.IndexAny(head, " :"); idx > 0 {
		head = head[:idx]
	}
	return "auth/" + strings.ReplaceAll(strings.ToLower(head), "_", "-")
}

// CreateAccount provisions a new password account and sets its display name.
func (p *RESTProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*port.Identity, error) {
	var created restAccountResponse
	if err := p.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &created); err != nil {
		return nil, err
	}

	if displayName != "" {
		if err := p.post(ctx, "accounts:update", map[string]any{
			"idToken":     created.IDToken,
			"displayName": displayName,
		}, nil); err != nil {
			return nil, err
		}
	}

	return &port.Identity{
		UID:         created.UID,
		Email:       created.Email,
		DisplayName: displayName,
		Token:       created.IDToken,
	}, nil
}

// Authenticate exchanges email/password for an identity and session token.
func (p *RESTProvider) Authenticate(ctx context.Context, email, password string) (*port.Identity, error) {
	var signed restAccountResponse
	if err := p.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &signed); err != nil {
		return nil, err
	}

	return &port.Identity{
		UID:         signed.UID,
		Email:       signed.Email,
		DisplayName: signed.DisplayName,
		PhotoURL:    signed.PhotoURL,
		Token:       signed.IDToken,
	}, nil
}

// UpdatePassword rotates the password for the account behind the email.
func (p *RESTProvider) UpdatePassword(ctx context.Context, email, newPassword string) error {
	return p.post(ctx, "accounts:resetPassword", map[string]any{
		"email":       email,
		"newPassword": newPassword,
	}, nil)
}

// SignInMethods lists the registered methods for the address.
func (p *RESTProvider) SignInMethods(ctx context.Context, email string) ([]string, error) {
	var result struct {
		SignInMethods []string `json:"signinMethods"`
		Registered    bool     `json:"registered"`
	}
	if err := p.post(ctx, "accounts:createAuthUri", map[string]any{
		"identifier":  email,
		"continueUri": "http://localhost",
	}, &result); err != nil {
		return nil, err
	}

	if len(result.SignInMethods) == 0 && result.Registered {
		return []string{port.SignInMethodPassword}, nil
	}
	return result.SignInMethods, nil
}

// SignOut revokes the provider session. Token revocation failures are
// reported but never block local logout.
func (p *RESTProvider) SignOut(ctx context.Context, token string) error {
	return p.post(ctx, "accounts:signOut", map[string]any{"idToken": token}, nil)
}

var _ port.IdentityProvider = (*RESTProvider)(nil)
