package review

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

const uniqueCustomerProduct = "reviews_customer_product_key"

type postgresRepo struct {
	exec   *db.Executor
	logger *zap.Logger
}

func NewPostgres(exec *db.Executor, log *zap.Logger) Repository {
	return &postgresRepo{exec: exec, logger: logger.OrNop(log)}
}

func (r *postgresRepo) Create(ctx context.Context, rv domain.Review) (*domain.Review, error) {
	const q = `
WITH inserted AS (
    INSERT INTO reviews (product_id, customer_id, rating, comment)
    VALUES ($1, $2, $3, $4)
    RETURNING id, product_id, customer_id, rating, comment, created_at
)
SELECT i.id::text AS id, i.product_id::text AS product_id, i.customer_id::text AS customer_id,
       c.name AS customer_name, i.rating, i.comment, i.created_at
FROM inserted i
JOIN customers c ON c.id = i.customer_id
`
	out, err := db.Create[domain.Review](ctx, r.exec, q, rv.ProductID, rv.CustomerID, rv.Rating, rv.Comment)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, domain.ErrAlreadyExists) && db.ConstraintName(err) == uniqueCustomerProduct:
		return nil, domain.Conflict("customer has already reviewed this product")
	case db.IsForeignKeyViolation(err):
		if db.ConstraintName(err) == "reviews_product_id_fkey" {
			return nil, domain.NotFound("product")
		}
		return nil, domain.NotFound("customer")
	}
	r.logger.Error("review repo: create", zap.String("productId", rv.ProductID), zap.Error(err))
	return nil, err
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	const q = `
SELECT rv.id::text AS id, rv.product_id::text AS product_id, rv.customer_id::text AS customer_id,
       c.name AS customer_name, rv.rating, rv.comment, rv.created_at
FROM reviews rv
JOIN customers c ON c.id = rv.customer_id
WHERE rv.product_id = $1
ORDER BY rv.created_at DESC, rv.id
`
	return db.FindMany[domain.Review](ctx, r.exec, q, productID)
}
