package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/transport/http/middleware"
)

// ErrorCase maps a sentinel error to an HTTP status code and response
// message. Code, when set, rides on the response so clients can branch on it
// the same way they do for provider codes.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// RespondWithMappedError resolves the error against known cases, surfaces
// identity provider errors with their native code, or falls back to a generic
// response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, ErrorResponse{
				Error:   cs.Message,
				Code:    cs.Code,
				TraceID: middleware.GetTraceID(c),
			})
			return
		}
	}

	var provErr *port.ProviderError
	if errors.As(err, &provErr) {
		c.JSON(providerStatus(provErr.Code), ErrorResponse{
			Error:   provErr.Message,
			Code:    provErr.Code,
			TraceID: middleware.GetTraceID(c),
		})
		return
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// providerStatus translates the provider's error code namespace to an HTTP
// status. Unknown codes count as upstream failures.
func providerStatus(code string) int {
	switch code {
	case "auth/email-already-in-use":
		return http.StatusConflict
	case "auth/user-not-found", "auth/wrong-password", "auth/invalid-credential", "auth/user-disabled":
		return http.StatusUnauthorized
	case "auth/invalid-email", "auth/weak-password", "auth/missing-password":
		return http.StatusBadRequest
	case "auth/too-many-requests":
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
