package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Redabouizer/crealik-auth/internal/usecase"
)

// AuthHandler exposes registration, login, and logout endpoints.
type AuthHandler struct {
	auth  *usecase.AuthService
	codes *usecase.VerificationService
}

// NewAuthHandler constructs an AuthHandler instance.
func NewAuthHandler(auth *usecase.AuthService, codes *usecase.VerificationService) *AuthHandler {
	return &AuthHandler{auth: auth, codes: codes}
}

// RegisterRoutes attaches the auth endpoints to the provided group.
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	group.POST("/register", h.Register)

	login := group.Group("/login")
	if len(loginMiddlewares) > 0 {
		login.Use(loginMiddlewares...)
	}
	login.POST("", h.Login)
	login.GET("/google", h.GoogleAuthURL)
	login.POST("/google/callback", h.GoogleCallback)
	login.POST("/code/request", h.RequestLoginCode)
	login.POST("/code/verify", h.VerifyLoginCode)

	group.POST("/logout", h.Logout)
}

// Register godoc
// @Summary Create an account with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet complexity requirements"},
		}, http.StatusInternalServerError, "failed to register")
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(result))
}

// Login godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.PasswordLogin(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTooManyLoginAttempts, Status: http.StatusTooManyRequests, Code: "auth/too-many-requests", Message: "too many failed login attempts, please try again later"},
		}, http.StatusInternalServerError, "failed to sign in")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

// GoogleAuthURL godoc
// @Summary Build the Google consent page URL
// @Tags Auth
// @Produce json
// @Param state query string true "Opaque state echoed back on the callback"
// @Param code_challenge query string true "PKCE S256 code challenge"
// @Success 200 {object} GoogleAuthURLResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/login/google [get]
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	url, err := h.auth.FederatedAuthURL(c.Query("state"), c.Query("code_challenge"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "state and code_challenge are required"))
		return
	}

	c.JSON(http.StatusOK, GoogleAuthURLResponse{AuthURL: url})
}

// GoogleCallback godoc
// @Summary Complete Google sign-in with the authorization code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body GoogleCallbackRequest true "Code exchange payload"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login/google/callback [post]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var req GoogleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid callback payload"))
		return
	}

	result, err := h.auth.FederatedLogin(c.Request.Context(), req.Code, req.CodeVerifier, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusUnauthorized, "google sign-in failed")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

// RequestLoginCode godoc
// @Summary Email a one-time login code
// @Description Always responds 202; issuance does not reveal whether an account exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CodeRequest true "Code request payload"
// @Success 202 {object} CodeIssuedResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/login/code/request [post]
func (h *AuthHandler) RequestLoginCode(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid code request payload"))
		return
	}

	expiresAt, err := h.codes.IssueLoginCode(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue login code"))
		return
	}

	c.JSON(http.StatusAccepted, CodeIssuedResponse{
		Message:   "If the address is reachable, a code has been sent",
		ExpiresAt: expiresAt,
	})
}

// VerifyLoginCode godoc
// @Summary Sign in with an emailed code
// @Description New addresses get an account and a session. Existing accounts
// cannot be given a session from a code alone; the response names the sign-in
// method that must finish the flow.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CodeVerifyRequest true "Code verification payload"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/login/code/verify [post]
func (h *AuthHandler) VerifyLoginCode(c *gin.Context) {
	var req CodeVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid code verification payload"))
		return
	}

	result, err := h.codes.CodeLogin(c.Request.Context(), req.Email, req.Code, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidOrExpiredCode, Status: http.StatusBadRequest, Message: "invalid or expired verification code"},
		}, http.StatusInternalServerError, "failed to verify login code")
		return
	}

	if result.Status != usecase.CodeLoginCompleted {
		c.JSON(http.StatusOK, CodeLoginPendingResponse{
			Status: string(result.Status),
			Email:  result.Email,
		})
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result.Auth))
}

// Logout godoc
// @Summary End the current session
// @Tags Auth
// @Produce json
// @Param Authorization header string true "Bearer session token"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing bearer token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to log out"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
