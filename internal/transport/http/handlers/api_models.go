package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Redabouizer/crealik-auth/internal/transport/http/middleware"
	"github.com/Redabouizer/crealik-auth/internal/usecase"
)

// ErrorResponse is the generic error payload. Code carries the identity
// provider's native error code when one caused the failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request trace ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// LoginRequest defines the payload for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleCallbackRequest carries the authorization code exchange inputs.
type GoogleCallbackRequest struct {
	Code         string `json:"code" binding:"required"`
	CodeVerifier string `json:"code_verifier" binding:"required"`
}

// GoogleAuthURLResponse returns the consent page URL for the client redirect.
type GoogleAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// CodeRequest asks for a verification code to be issued to the address.
type CodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CodeVerifyRequest carries an emailed code back for checking.
type CodeVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// CodeIssuedResponse acknowledges code issuance without leaking whether an
// account exists for the address.
type CodeIssuedResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionSummary is the compact session view returned on authentication.
type SessionSummary struct {
	AuthenticatedAt    time.Time `json:"authenticated_at"`
	IdleTimeoutSeconds int       `json:"idle_timeout_seconds"`
}

// AuthResponse describes a completed authentication.
type AuthResponse struct {
	UID             string         `json:"uid"`
	Email           string         `json:"email"`
	DisplayName     string         `json:"display_name,omitempty"`
	PhotoURL        string         `json:"photo_url,omitempty"`
	Token           string         `json:"token"`
	ProfileComplete bool           `json:"profile_complete"`
	IsNewUser       bool           `json:"is_new_user"`
	Session         SessionSummary `json:"session"`
}

// CodeLoginPendingResponse is returned when the code checked out but a session
// could not be started with the code alone.
type CodeLoginPendingResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

// PasswordStrengthRequest carries a candidate password for evaluation.
type PasswordStrengthRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResetConfirmRequest finalizes a password reset with an emailed code.
type ResetConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// SessionValidateResponse reports whether the presented token's session is
// still inside its idle window.
type SessionValidateResponse struct {
	Valid bool `json:"valid"`
}

// HealthResponse reports service status and start time.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func newAuthResponse(result *usecase.AuthResult) AuthResponse {
	return AuthResponse{
		UID:             result.Identity.UID,
		Email:           result.Identity.Email,
		DisplayName:     result.Profile.DisplayName,
		PhotoURL:        result.Profile.PhotoURL,
		Token:           result.Identity.Token,
		ProfileComplete: result.ProfileComplete,
		IsNewUser:       result.IsNewUser,
		Session: SessionSummary{
			AuthenticatedAt:    result.Session.AuthenticatedAt,
			IdleTimeoutSeconds: int(result.Session.IdleTimeout.Seconds()),
		},
	}
}
