package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Redabouizer/crealik-auth/internal/usecase"
)

// SessionHandler exposes the session validity endpoint.
type SessionHandler struct {
	sessions *usecase.SessionService
}

// NewSessionHandler constructs a SessionHandler instance.
func NewSessionHandler(sessions *usecase.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes attaches the session endpoints to the provided group.
func (h *SessionHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/validate", h.Validate)
}

// Validate godoc
// @Summary Check whether the session is still inside its idle window
// @Description A positive check refreshes the session's last activity, so
// expiration slides with use.
// @Tags Session
// @Produce json
// @Param Authorization header string true "Bearer session token"
// @Success 200 {object} SessionValidateResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/session/validate [post]
func (h *SessionHandler) Validate(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing bearer token"))
		return
	}

	valid, err := h.sessions.Validate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to validate session"))
		return
	}

	c.JSON(http.StatusOK, SessionValidateResponse{Valid: valid})
}
