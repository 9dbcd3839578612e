package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Redabouizer/crealik-auth/internal/infra/security"
	"github.com/Redabouizer/crealik-auth/internal/usecase"
)

// PasswordHandler exposes password strength and reset endpoints.
type PasswordHandler struct {
	codes *usecase.VerificationService
}

// NewPasswordHandler constructs a PasswordHandler instance.
func NewPasswordHandler(codes *usecase.VerificationService) *PasswordHandler {
	return &PasswordHandler{codes: codes}
}

// RegisterRoutes attaches the password endpoints to the provided group.
func (h *PasswordHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/strength", h.Strength)

	reset := group.Group("/reset")
	reset.POST("/request", h.RequestReset)
	reset.POST("/confirm", h.ConfirmReset)
}

// Strength godoc
// @Summary Score a candidate password
// @Description Pure evaluation; nothing is stored and no account is consulted.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordStrengthRequest true "Candidate password"
// @Success 200 {object} security.StrengthResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/password/strength [post]
func (h *PasswordHandler) Strength(c *gin.Context) {
	var req PasswordStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid strength payload"))
		return
	}

	c.JSON(http.StatusOK, security.EvaluateStrength(req.Password))
}

// RequestReset godoc
// @Summary Email a password reset code
// @Description Always responds 202 to avoid account enumeration.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body CodeRequest true "Reset request payload"
// @Success 202 {object} CodeIssuedResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/password/reset/request [post]
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset request payload"))
		return
	}

	expiresAt, err := h.codes.IssueResetCode(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to issue reset code"))
		return
	}

	c.JSON(http.StatusAccepted, CodeIssuedResponse{
		Message:   "If the account exists, instructions have been sent",
		ExpiresAt: expiresAt,
	})
}

// ConfirmReset godoc
// @Summary Rotate the password with an emailed reset code
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ResetConfirmRequest true "Reset confirm payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/password/reset/confirm [post]
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset confirm payload"))
		return
	}

	err := h.codes.ResetPasswordWithCode(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidOrExpiredCode, Status: http.StatusBadRequest, Message: "invalid or expired verification code"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "new password does not meet complexity requirements"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful"})
}
