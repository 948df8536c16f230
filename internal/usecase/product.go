package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/metrics"
	"github.com/ErlanBelekov/credit-market/internal/repository"
	"github.com/ErlanBelekov/credit-market/internal/validate"
)

type ProductUsecase struct {
	repo       repository.ProductRepository
	maxCredits int
}

func NewProductUsecase(repo repository.ProductRepository, maxCredits int) *ProductUsecase {
	return &ProductUsecase{repo: repo, maxCredits: maxCredits}
}

type AddProductInput struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Image   string `json:"image"   validate:"required,http_url"`
	Credits int    `json:"credits" validate:"gt=0"`
}

// AddProduct persists a new catalog entry. Role checks happen before this
// is called.
func (u *ProductUsecase) AddProduct(ctx context.Context, input AddProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Image = strings.TrimSpace(input.Image)

	if err := u.validate(input); err != nil {
		return nil, err
	}

	p, err := u.repo.Create(ctx, &domain.Product{
		Name:    input.Name,
		Image:   input.Image,
		Credits: input.Credits,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductsCreatedTotal.Inc()
	return p, nil
}

func (u *ProductUsecase) validate(input AddProductInput) error {
	err := validate.Struct(input)
	if input.Credits <= u.maxCredits {
		return err
	}

	msg := fmt.Sprintf("must be at most %d", u.maxCredits)
	if err == nil {
		return domain.NewValidationError("credits", msg)
	}
	if verr, ok := err.(*domain.ValidationError); ok {
		verr.Fields["credits"] = msg
	}
	return err
}

func (u *ProductUsecase) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := u.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}
