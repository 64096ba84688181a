package product

import (
	"context"

	"storefront-api/internal/domain"
)

// Filter narrows a product listing. Zero values mean "no constraint".
type Filter struct {
	CategoryID string
	Search     string
	Active     *bool
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	Count(ctx context.Context, f Filter) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// Create inserts the product and its variants in one transaction.
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
