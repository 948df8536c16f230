package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	ctxlog "github.com/ErlanBelekov/credit-market/internal/log"
	"github.com/ErlanBelekov/credit-market/internal/metrics"
	"github.com/ErlanBelekov/credit-market/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	ClaimsKey = "claims"

	errTokenMissing   = "Access token missing or invalid"
	errTokenInvalid   = "Access token is invalid"
	errNoPermission   = "You do not have permission to perform this action"
	errInternalServer = "Internal server error"
)

type tokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

type roleAuthorizer interface {
	AuthorizeRole(ctx context.Context, claims *token.Claims, required domain.Role, policy domain.RolePolicy) error
}

// Authenticate verifies the Bearer token and stores its claims under
// ClaimsKey. A missing header is 401; a token that fails verification is 403.
func Authenticate(tokens tokenParser, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")

	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errTokenMissing})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			reason := rejectionReason(err)
			metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
			logger.DebugContext(c.Request.Context(), "token rejected", "reason", reason, "error", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": errTokenInvalid})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctxlog.WithActor(c.Request.Context(), claims.Email))
		c.Next()
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrSignature):
		return "signature"
	default:
		return "malformed"
	}
}

// ClaimsFrom returns the claims set by Authenticate, or nil.
func ClaimsFrom(c *gin.Context) *token.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*token.Claims)
	return claims
}

// RequireRole runs after Authenticate and aborts with 403 unless the caller
// holds role under the given policy.
func RequireRole(authz roleAuthorizer, role domain.Role, policy domain.RolePolicy, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")

	return func(c *gin.Context) {
		err := authz.AuthorizeRole(c.Request.Context(), ClaimsFrom(c), role, policy)
		if err == nil {
			c.Next()
			return
		}

		if errors.Is(err, domain.ErrForbidden) {
			logger.InfoContext(c.Request.Context(), "role check failed",
				"required", role, "policy", policy.String(), "error", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": errNoPermission})
			return
		}

		logger.ErrorContext(c.Request.Context(), "role check", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
	}
}
