package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/oauth"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidInputs      = "Invalid inputs"
	errEmailTaken         = "Email already registered"
	errEmailNotRegistered = "Invalid email or email not registered"
	errWrongPassword      = "Invalid password"
	errInvalidCredentials = "Invalid credentials"
	errUserNotFound       = "User not found"
	errNoPermission       = "You do not have permission to perform this action"
	errUnknownProvider    = "Unknown sign-in provider"
	errOAuthState         = "Sign-in request is invalid or has expired"
	errOAuthUpstream      = "Sign-in provider did not complete the request"
)

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: msg})
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func writeError(c *gin.Context, logger *slog.Logger, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: errInvalidInputs, Fields: verr.Fields})
	case errors.Is(err, domain.ErrEmailTaken):
		abortWith(c, http.StatusConflict, errEmailTaken)
	case errors.Is(err, domain.ErrEmailNotRegistered):
		abortWith(c, http.StatusBadRequest, errEmailNotRegistered)
	case errors.Is(err, domain.ErrWrongPassword):
		abortWith(c, http.StatusBadRequest, errWrongPassword)
	case errors.Is(err, domain.ErrInvalidCredentials):
		abortWith(c, http.StatusBadRequest, errInvalidCredentials)
	case errors.Is(err, domain.ErrUserNotFound):
		abortWith(c, http.StatusNotFound, errUserNotFound)
	case errors.Is(err, domain.ErrForbidden):
		abortWith(c, http.StatusForbidden, errNoPermission)
	case errors.Is(err, oauth.ErrUnknownProvider):
		abortWith(c, http.StatusNotFound, errUnknownProvider)
	case errors.Is(err, oauth.ErrInvalidState):
		abortWith(c, http.StatusBadRequest, errOAuthState)
	case errors.Is(err, oauth.ErrExchange), errors.Is(err, oauth.ErrProfile):
		logger.WarnContext(c.Request.Context(), op, "error", err)
		abortWith(c, http.StatusBadGateway, errOAuthUpstream)
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		abortWith(c, http.StatusInternalServerError, errInternalServer)
	}
}
