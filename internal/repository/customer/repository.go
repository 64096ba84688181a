package customer

import (
	"context"

	"storefront-api/internal/domain"
)

type Repository interface {
	List(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error)
	Count(ctx context.Context, search string) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}
