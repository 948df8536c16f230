package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/usecase"
	"github.com/gin-gonic/gin"
)

type productUsecaser interface {
	AddProduct(ctx context.Context, input usecase.AddProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}

type ProductHandler struct {
	productUsecase productUsecaser
	logger         *slog.Logger
}

func NewProductHandler(productUsecase productUsecaser, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		logger:         logger.With("component", "product_handler"),
	}
}

type addProductRequest struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	Credits int    `json:"credits"`
}

type productResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Credits int    `json:"credits"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Image: p.Image, Credits: p.Credits}
}

// POST /products (admin only, enforced by the router)
func (h *ProductHandler) Add(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, errInvalidInputs)
		return
	}

	p, err := h.productUsecase.AddProduct(c.Request.Context(), usecase.AddProductInput{
		Name:    req.Name,
		Image:   req.Image,
		Credits: req.Credits,
	})
	if err != nil {
		writeError(c, h.logger, "add product", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product added successfully",
		"product": toProductResponse(p),
	})
}

// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productUsecase.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "list products", err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": out})
}
