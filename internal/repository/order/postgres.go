package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

const (
	orderColumns = `
id::text AS id, order_number, customer_id::text AS customer_id, customer_name, customer_email,
customer_phone, total_amount, status, created_at, updated_at
`
	itemColumns = `
id::text AS id, order_id::text AS order_id, product_id::text AS product_id, variant_id::text AS variant_id,
product_name, variant_name, price, quantity, created_at
`
)

type postgresRepo struct {
	exec   *db.Executor
	logger *zap.Logger
}

func NewPostgres(exec *db.Executor, log *zap.Logger) Repository {
	return &postgresRepo{exec: exec, logger: logger.OrNop(log)}
}

func (r *postgresRepo) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return db.Do(ctx, r.exec, func(ctx context.Context, q db.Querier) error {
		return pgx.BeginFunc(ctx, q, func(tx pgx.Tx) error {
			return fn(ctx, &txStore{tx: tx})
		})
	})
}

type txStore struct {
	tx pgx.Tx
}

func (s *txStore) FindCustomerIDByEmail(ctx context.Context, email string) (string, bool, error) {
	var id string
	err := s.tx.QueryRow(ctx, `SELECT id::text FROM customers WHERE email = lower($1)`, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *txStore) CreateCustomer(ctx context.Context, name, email, phone string) (string, error) {
	const q = `
INSERT INTO customers (name, email, phone)
VALUES ($1, lower($2), $3)
ON CONFLICT (email) DO NOTHING
RETURNING id::text
`
	var id string
	err := s.tx.QueryRow(ctx, q, name, email, phone).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a race with a concurrent first order for the same email.
		existing, ok, ferr := s.FindCustomerIDByEmail(ctx, email)
		if ferr != nil {
			return "", ferr
		}
		if !ok {
			return "", fmt.Errorf("customer %q vanished after insert conflict", email)
		}
		return existing, nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *txStore) LookupVariant(ctx context.Context, productID, variantID string) (Snapshot, error) {
	const q = `
SELECT p.name AS product_name, v.name AS variant_name
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $2 AND p.id = $1
`
	snap, err := db.One[Snapshot](ctx, s.tx, q, productID, variantID)
	if errors.Is(err, domain.ErrNotFound) {
		return Snapshot{}, domain.NotFound("product variant")
	}
	if err != nil {
		return Snapshot{}, err
	}
	return *snap, nil
}

func (s *txStore) InsertOrder(ctx context.Context, o domain.Order) (*domain.Order, bool, error) {
	const q = `
INSERT INTO orders (order_number, customer_id, customer_name, customer_email, customer_phone, total_amount, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (order_number) DO NOTHING
RETURNING ` + orderColumns
	out, err := db.One[domain.Order](ctx, s.tx, q,
		o.OrderNumber, o.CustomerID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.TotalAmount, o.Status)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, false, nil
	case db.IsForeignKeyViolation(err):
		return nil, false, domain.NotFound("customer")
	case err != nil:
		return nil, false, err
	}
	return out, true, nil
}

func (s *txStore) InsertItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error) {
	const q = `
INSERT INTO order_items (order_id, product_id, variant_id, product_name, variant_name, price, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + itemColumns
	return db.One[domain.OrderItem](ctx, s.tx, q,
		item.OrderID, item.ProductID, item.VariantID, item.ProductName, item.VariantName, item.Price, item.Quantity)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return db.Run(ctx, r.exec, func(ctx context.Context, q db.Querier) (*domain.Order, error) {
		o, err := db.One[domain.Order](ctx, q, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
		if err != nil {
			return nil, err
		}
		items, err := db.Many[domain.OrderItem](ctx, q,
			`SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at, id`, id)
		if err != nil {
			return nil, err
		}
		o.Items = items
		return o, nil
	})
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	where, args := f.where()
	limit := domain.ListLimit(f.Limit)
	offset := max(f.Offset, 0)
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))
	out, err := db.FindMany[domain.Order](ctx, r.exec, q, args...)
	if err != nil {
		r.logger.Error("order repo: list", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := f.where()
	return db.Count(ctx, r.exec, `SELECT count(*) FROM orders `+where, args...)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	const q = `
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id::text
`
	if err := db.Do(ctx, r.exec, func(ctx context.Context, q2 db.Querier) error {
		var got string
		if err := q2.QueryRow(ctx, q, id, status).Scan(&got); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("order")
			}
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}
	r.logger.Info("order repo: status updated", zap.String("id", id), zap.String("status", status))
	return r.GetByID(ctx, id)
}
