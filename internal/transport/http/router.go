package httptransport

import (
	"log/slog"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/token"
	"github.com/ErlanBelekov/credit-market/internal/transport/http/handler"
	"github.com/ErlanBelekov/credit-market/internal/transport/http/middleware"
	"github.com/ErlanBelekov/credit-market/internal/usecase"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// NewRouter wires every route. oauthHandler may be nil when no provider is
// configured.
func NewRouter(
	logger *slog.Logger,
	tokens *token.Manager,
	authUsecase *usecase.AuthUsecase,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	oauthHandler *handler.OAuthHandler,
	requestTimeout time.Duration,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Timeout(requestTimeout))

	authMW := middleware.Authenticate(tokens, logger)

	users := r.Group("/user")
	users.POST("/signup", authHandler.Signup)
	users.POST("/signin", authHandler.Signin)
	users.GET("/get-role", authMW, authHandler.GetRole)
	// ElevateRole re-reads the actor's role from the store itself.
	users.PATCH("/role", authMW, authHandler.UpdateRole)

	if oauthHandler != nil {
		users.GET("/oauth/:provider", oauthHandler.Start)
		users.GET("/oauth/:provider/callback", oauthHandler.Callback)
	}

	// Adding products trusts the role claim in the token.
	adminOnly := middleware.RequireRole(authUsecase, domain.RoleAdmin, domain.PolicyTokenClaim, logger)

	products := r.Group("/products")
	products.GET("", productHandler.List)
	products.POST("", authMW, adminOnly, productHandler.Add)

	return r
}
