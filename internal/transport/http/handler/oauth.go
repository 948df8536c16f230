package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/credit-market/internal/oauth"
	"github.com/ErlanBelekov/credit-market/internal/usecase"
	"github.com/gin-gonic/gin"
)

type federation interface {
	Start(ctx context.Context, provider string) (string, error)
	Callback(ctx context.Context, provider, state, code string) (oauth.Identity, error)
}

type federatedSigner interface {
	SigninFederated(ctx context.Context, email, name string) (*usecase.SigninResult, error)
}

type OAuthHandler struct {
	federation federation
	signer     federatedSigner
	logger     *slog.Logger
}

func NewOAuthHandler(f federation, signer federatedSigner, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		federation: f,
		signer:     signer,
		logger:     logger.With("component", "oauth_handler"),
	}
}

// GET /user/oauth/:provider
func (h *OAuthHandler) Start(c *gin.Context) {
	url, err := h.federation.Start(c.Request.Context(), c.Param("provider"))
	if err != nil {
		writeError(c, h.logger, "oauth start", err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GET /user/oauth/:provider/callback?state=...&code=...
func (h *OAuthHandler) Callback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		h.logger.InfoContext(c.Request.Context(), "oauth denied", "provider", c.Param("provider"), "reason", reason)
		abortWith(c, http.StatusBadRequest, errOAuthState)
		return
	}

	id, err := h.federation.Callback(c.Request.Context(), c.Param("provider"), c.Query("state"), c.Query("code"))
	if err != nil {
		writeError(c, h.logger, "oauth callback", err)
		return
	}

	res, err := h.signer.SigninFederated(c.Request.Context(), id.Email, id.Name)
	if err != nil {
		writeError(c, h.logger, "federated signin", err)
		return
	}
	c.JSON(http.StatusOK, toSigninResponse(res))
}
