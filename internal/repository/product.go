package repository

import (
	"context"

	"github.com/ErlanBelekov/credit-market/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// List returns every product ordered by id.
	List(ctx context.Context) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
}
