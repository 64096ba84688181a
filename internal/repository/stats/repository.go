// Package stats reads the admin dashboard counters.
package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

type Repository interface {
	Get(ctx context.Context) (*domain.Stats, error)
}

type postgresRepo struct {
	exec   *db.Executor
	logger *zap.Logger
}

func NewPostgres(exec *db.Executor, log *zap.Logger) Repository {
	return &postgresRepo{exec: exec, logger: logger.OrNop(log)}
}

type counter struct {
	name string
	sql  string
	dest *int64
}

func (r *postgresRepo) Get(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats
	counters := []counter{
		{"products", `SELECT count(*) FROM products`, &s.Products},
		{"categories", `SELECT count(*) FROM categories`, &s.Categories},
		{"customers", `SELECT count(*) FROM customers`, &s.Customers},
		{"orders", `SELECT count(*) FROM orders`, &s.Orders},
		{"pending orders", `SELECT count(*) FROM orders WHERE status = 'pending'`, &s.PendingOrders},
	}
	for _, c := range counters {
		n, err := db.Count(ctx, r.exec, c.sql)
		if err != nil {
			r.logger.Error("stats repo: count", zap.String("counter", c.name), zap.Error(err))
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dest = n
	}
	return &s, nil
}
