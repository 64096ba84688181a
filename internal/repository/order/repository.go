package order

import (
	"context"

	"storefront-api/internal/domain"
)

// Snapshot is the catalog data copied onto an order item.
type Snapshot struct {
	ProductName string `db:"product_name"`
	VariantName string `db:"variant_name"`
}

// Store is the set of writes available inside an order transaction.
type Store interface {
	FindCustomerIDByEmail(ctx context.Context, email string) (string, bool, error)
	// CreateCustomer inserts the customer unless the email is already taken
	// and returns the id of whichever row owns the email afterwards.
	CreateCustomer(ctx context.Context, name, email, phone string) (string, error)
	LookupVariant(ctx context.Context, productID, variantID string) (Snapshot, error)
	// InsertOrder reports false when the order number is already in use.
	InsertOrder(ctx context.Context, o domain.Order) (*domain.Order, bool, error)
	InsertItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error)
}

type Filter struct {
	Status     string
	CustomerID string
	Limit      int
	Offset     int
}

type Repository interface {
	// InTx runs fn in one transaction; any error rolls back every write.
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, error)
	Count(ctx context.Context, f Filter) (int64, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}
