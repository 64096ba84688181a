package customer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

type postgresRepo struct {
	exec   *db.Executor
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(exec *db.Executor, log *zap.Logger) Repository {
	return &postgresRepo{exec: exec, logger: logger.OrNop(log)}
}

const selectColumns = `
SELECT c.id::text AS id, c.name, c.email, c.phone,
       (SELECT count(*) FROM orders o WHERE o.customer_id = c.id) AS order_count,
       c.created_at, c.updated_at
FROM customers c
`

const searchClause = `WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%' OR c.email ILIKE '%' || $1 || '%')`

func (r *postgresRepo) List(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error) {
	limit = domain.ListLimit(limit)
	if offset < 0 {
		offset = 0
	}
	q := selectColumns + searchClause + ` ORDER BY c.created_at DESC, c.id LIMIT $2 OFFSET $3`
	out, err := db.FindMany[domain.Customer](ctx, r.exec, q, strings.TrimSpace(search), limit, offset)
	if err != nil {
		r.logger.Error("customer repo: list", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Count(ctx context.Context, search string) (int64, error) {
	return db.Count(ctx, r.exec, `SELECT count(*) FROM customers c `+searchClause, strings.TrimSpace(search))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return db.FindUnique[domain.Customer](ctx, r.exec, selectColumns+`WHERE c.id = $1`, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return db.FindUnique[domain.Customer](ctx, r.exec, selectColumns+`WHERE c.email = lower($1)`, strings.TrimSpace(email))
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (name, email, phone)
VALUES ($1, lower($2), $3)
RETURNING id::text AS id, name, email, phone, 0::bigint AS order_count, created_at, updated_at
`
	out, err := db.Create[domain.Customer](ctx, r.exec, q, c.Name, strings.TrimSpace(c.Email), c.Phone)
	if err != nil {
		r.logger.Warn("customer repo: create", zap.String("email", c.Email), zap.Error(err))
		return nil, err
	}
	return out, nil
}
