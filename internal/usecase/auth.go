package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/email"
	"github.com/ErlanBelekov/credit-market/internal/metrics"
	"github.com/ErlanBelekov/credit-market/internal/password"
	"github.com/ErlanBelekov/credit-market/internal/repository"
	"github.com/ErlanBelekov/credit-market/internal/token"
	"github.com/ErlanBelekov/credit-market/internal/validate"
)

type passwordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) error
}

type tokenIssuer interface {
	Issue(email string, role domain.Role) (string, time.Time, error)
}

type AuthUsecase struct {
	users            repository.UserRepository
	tokens           tokenIssuer
	hasher           passwordHasher
	email            email.Sender
	logger           *slog.Logger
	allowAdminSignup bool
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens tokenIssuer,
	hasher passwordHasher,
	emailSender email.Sender,
	logger *slog.Logger,
	allowAdminSignup bool,
) *AuthUsecase {
	return &AuthUsecase{
		users:            users,
		tokens:           tokens,
		hasher:           hasher,
		email:            emailSender,
		logger:           logger.With("component", "auth"),
		allowAdminSignup: allowAdminSignup,
	}
}

type SignupInput struct {
	Email    string      `json:"email"    validate:"required,email"`
	UserName string      `json:"userName" validate:"max=50"`
	Password string      `json:"password" validate:"required,min=6,max=20"`
	Role     domain.Role `json:"role"     validate:"omitempty,oneof=user admin"`
}

type SigninInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type ElevateRoleInput struct {
	Email string      `json:"email" validate:"required,email"`
	Role  domain.Role `json:"role"  validate:"required,oneof=user admin"`
}

type SigninResult struct {
	Token     string
	Role      domain.Role
	Message   string
	ExpiresAt time.Time
}

// Signup stores a new account. It does not issue a token.
func (u *AuthUsecase) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	input.UserName = strings.TrimSpace(input.UserName)
	input.Password = strings.TrimSpace(input.Password)
	if input.Role == "" {
		input.Role = domain.RoleUser
	}

	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.Role == domain.RoleAdmin && !u.allowAdminSignup {
		return nil, domain.NewValidationError("role", "admin accounts cannot be created at signup")
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        input.Email,
		UserName:     input.UserName,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	u.sendWelcome(ctx, user)
	return user.Sanitized(), nil
}

// sendWelcome never fails the signup.
func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	msg, err := email.Welcome(user.Email, user.UserName)
	if err == nil {
		err = u.email.Send(ctx, msg)
	}
	if err != nil {
		u.logger.WarnContext(ctx, "welcome email not sent", "to", user.Email, "error", err)
	}
}

func (u *AuthUsecase) Signin(ctx context.Context, input SigninInput) (*SigninResult, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	input.Password = strings.TrimSpace(input.Password)

	if err := validate.Struct(input); err != nil {
		metrics.SigninsTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.SigninsTotal.WithLabelValues("unknown_email").Inc()
		return nil, domain.ErrEmailNotRegistered
	case err != nil:
		metrics.SigninsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Accounts created through an OAuth provider have no password.
	if user.PasswordHash == "" {
		metrics.SigninsTotal.WithLabelValues("unknown_email").Inc()
		return nil, domain.ErrEmailNotRegistered
	}

	if err := u.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			metrics.SigninsTotal.WithLabelValues("wrong_password").Inc()
			return nil, domain.ErrWrongPassword
		}
		metrics.SigninsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("compare password: %w", err)
	}

	result, err := u.issue(user)
	if err != nil {
		metrics.SigninsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SigninsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// SigninFederated signs in the owner of an email verified by an OAuth
// provider, creating a password-less user account on first use.
func (u *AuthUsecase) SigninFederated(ctx context.Context, emailAddr, name string) (*SigninResult, error) {
	emailAddr = domain.NormalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil, domain.NewValidationError("email", "is required")
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = u.users.Create(ctx, &domain.User{
			Email:    emailAddr,
			UserName: strings.TrimSpace(name),
			Role:     domain.RoleUser,
		})
		if errors.Is(err, domain.ErrEmailTaken) {
			// created concurrently by another callback
			user, err = u.users.FindByEmail(ctx, emailAddr)
		} else if err == nil {
			u.sendWelcome(ctx, user)
		}
	}
	if err != nil {
		metrics.SigninsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("federated user: %w", err)
	}

	result, err := u.issue(user)
	if err != nil {
		metrics.SigninsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SigninsTotal.WithLabelValues("federated").Inc()
	return result, nil
}

func (u *AuthUsecase) issue(user *domain.User) (*SigninResult, error) {
	signed, expiresAt, err := u.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &SigninResult{
		Token:     signed,
		Role:      user.Role,
		Message:   signinMessage(user.Role),
		ExpiresAt: expiresAt,
	}, nil
}

func signinMessage(role domain.Role) string {
	r := string(role)
	if r == "" {
		return "Signed in successfully!"
	}
	return strings.ToUpper(r[:1]) + r[1:] + " signed in successfully!"
}

// GetRole re-reads the caller's role from the store so that role changes
// apply without re-issuing the token.
func (u *AuthUsecase) GetRole(ctx context.Context, claims *token.Claims) (domain.Role, error) {
	user, err := u.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	return user.Role, nil
}

// AuthorizeRole returns domain.ErrForbidden unless the caller holds required.
// With PolicyTokenClaim the embedded role is trusted as is; with
// PolicyFreshLookup the role is read from the store.
func (u *AuthUsecase) AuthorizeRole(ctx context.Context, claims *token.Claims, required domain.Role, policy domain.RolePolicy) error {
	if claims == nil {
		return domain.ErrForbidden
	}

	role := claims.Role
	if policy == domain.PolicyFreshLookup {
		user, err := u.users.FindByEmail(ctx, claims.Email)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return fmt.Errorf("%w: account no longer exists", domain.ErrForbidden)
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		}
		role = user.Role
	}

	if role != required {
		return fmt.Errorf("%w: have %s, need %s", domain.ErrForbidden, role, required)
	}
	return nil
}

// ElevateRole lets an admin change another account's role. The actor's own
// role is always checked against the store.
func (u *AuthUsecase) ElevateRole(ctx context.Context, actor *token.Claims, input ElevateRoleInput) (*domain.User, error) {
	if err := u.AuthorizeRole(ctx, actor, domain.RoleAdmin, domain.PolicyFreshLookup); err != nil {
		return nil, err
	}

	input.Email = domain.NormalizeEmail(input.Email)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	user, err := u.users.UpdateRole(ctx, input.Email, input.Role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	u.logger.InfoContext(ctx, "role changed", "target", user.Email, "role", user.Role)
	return user.Sanitized(), nil
}
