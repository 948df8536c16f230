package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/token"
	"github.com/ErlanBelekov/credit-market/internal/transport/http/middleware"
	"github.com/ErlanBelekov/credit-market/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, input usecase.SignupInput) (*domain.User, error)
	Signin(ctx context.Context, input usecase.SigninInput) (*usecase.SigninResult, error)
	GetRole(ctx context.Context, claims *token.Claims) (domain.Role, error)
	ElevateRole(ctx context.Context, actor *token.Claims, input usecase.ElevateRoleInput) (*domain.User, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type userResponse struct {
	Email    string      `json:"email"`
	UserName string      `json:"userName"`
	Role     domain.Role `json:"role"`
}

type signinResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Role      domain.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func toSigninResponse(res *usecase.SigninResult) signinResponse {
	return signinResponse{
		Success:   true,
		Message:   res.Message,
		Role:      res.Role,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC(),
	}
}

// POST /user/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, errInvalidInputs)
		return
	}

	user, err := h.authUsecase.Signup(c.Request.Context(), usecase.SignupInput{
		Email:    req.Email,
		UserName: req.UserName,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		writeError(c, h.logger, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    userResponse{Email: user.Email, UserName: user.UserName, Role: user.Role},
	})
}

// POST /user/signin
// Unknown email and wrong password are both 400 with distinct messages.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, errInvalidInputs)
		return
	}

	res, err := h.authUsecase.Signin(c.Request.Context(), usecase.SigninInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, "signin", err)
		return
	}

	c.JSON(http.StatusOK, toSigninResponse(res))
}

// GET /user/get-role
func (h *AuthHandler) GetRole(c *gin.Context) {
	role, err := h.authUsecase.GetRole(c.Request.Context(), middleware.ClaimsFrom(c))
	if err != nil {
		writeError(c, h.logger, "get role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "role": role})
}

// PATCH /user/role
func (h *AuthHandler) UpdateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, errInvalidInputs)
		return
	}

	user, err := h.authUsecase.ElevateRole(c.Request.Context(), middleware.ClaimsFrom(c), usecase.ElevateRoleInput{
		Email: req.Email,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		writeError(c, h.logger, "update role", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role updated",
		"user":    userResponse{Email: user.Email, UserName: user.UserName, Role: user.Role},
	})
}
