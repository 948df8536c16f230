package repository

import (
	"context"

	"github.com/ErlanBelekov/credit-market/internal/domain"
)

// UserRepository is keyed by normalized email. Implementations return
// domain.ErrUserNotFound when no row matches and domain.ErrEmailTaken on a
// unique violation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
}
