package order

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/internal/db"
	"storefront-api/internal/dbtest"
	"storefront-api/internal/domain"
)

func seedVariant(t *testing.T, ctx context.Context, client *db.Client) (productID, variantID string) {
	t.Helper()
	pool := client.Pool()
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO products (name, slug, price) VALUES ('Tote', 'tote', 20) RETURNING id::text`).Scan(&productID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO product_variants (product_id, name, price) VALUES ($1, 'Natural', 20) RETURNING id::text`,
		productID).Scan(&variantID))
	return productID, variantID
}

func TestPostgres_InTxCommitsOrderAndItems(t *testing.T) {
	ctx := context.Background()
	exec, client := dbtest.Executor(t)
	repo := NewPostgres(exec, nil)
	productID, variantID := seedVariant(t, ctx, client)

	var orderID string
	err := repo.InTx(ctx, func(ctx context.Context, s Store) error {
		customerID, err := s.CreateCustomer(ctx, "Ada", "Ada@Example.com", "")
		if err != nil {
			return err
		}
		again, err := s.CreateCustomer(ctx, "Ada", "ada@example.com", "")
		if err != nil {
			return err
		}
		assert.Equal(t, customerID, again)

		snap, err := s.LookupVariant(ctx, productID, variantID)
		if err != nil {
			return err
		}
		assert.Equal(t, Snapshot{ProductName: "Tote", VariantName: "Natural"}, snap)

		o, ok, err := s.InsertOrder(ctx, domain.Order{
			OrderNumber: "ORD202610140001", CustomerID: customerID, CustomerName: "Ada",
			CustomerEmail: "ada@example.com", TotalAmount: decimal.NewFromInt(40), Status: domain.OrderStatusPending,
		})
		if err != nil {
			return err
		}
		require.True(t, ok)
		orderID = o.ID

		_, ok, err = s.InsertOrder(ctx, domain.Order{OrderNumber: "ORD202610140001", CustomerID: customerID,
			TotalAmount: decimal.NewFromInt(1), Status: domain.OrderStatusPending})
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.InsertItem(ctx, domain.OrderItem{OrderID: o.ID, ProductID: productID, VariantID: variantID,
			ProductName: snap.ProductName, VariantName: snap.VariantName, Price: decimal.NewFromInt(20), Quantity: 2})
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(40)))

	updated, err := repo.UpdateStatus(ctx, orderID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	n, err := repo.Count(ctx, Filter{Status: domain.OrderStatusShipped})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPostgres_InTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	exec, client := dbtest.Executor(t)
	repo := NewPostgres(exec, nil)
	productID, _ := seedVariant(t, ctx, client)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(ctx context.Context, s Store) error {
		if _, err := s.CreateCustomer(ctx, "Bob", "bob@example.com", ""); err != nil {
			return err
		}
		_, err := s.LookupVariant(ctx, productID, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var customers int
	require.NoError(t, client.Pool().QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&customers))
	assert.Zero(t, customers)

	_, err = repo.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", domain.OrderStatusShipped)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// staleSource hands out a handle whose transactions fail at commit with a
// stale prepared statement error; Reconnect returns the real pool.
type staleSource struct {
	pool       db.Querier
	reconnects int
}

func (s *staleSource) Current() db.Querier { return staleHandle{Querier: s.pool} }

func (s *staleSource) Reconnect(context.Context, db.Querier) (db.Querier, error) {
	s.reconnects++
	return s.pool, nil
}

type staleHandle struct{ db.Querier }

func (h staleHandle) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := h.Querier.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return staleTx{Tx: tx}, nil
}

type staleTx struct{ pgx.Tx }

func (tx staleTx) Commit(ctx context.Context) error {
	if err := tx.Tx.Rollback(ctx); err != nil {
		return err
	}
	return &pgconn.PgError{Code: "26000", Message: `prepared statement "stmtcache_1" does not exist`}
}

func TestPostgres_InTxRetriesWholeTransactionOnStaleStatement(t *testing.T) {
	ctx := context.Background()
	_, client := dbtest.Executor(t)
	productID, variantID := seedVariant(t, ctx, client)

	src := &staleSource{pool: client.Pool()}
	repo := NewPostgres(db.NewExecutor(src, nil, db.WithMaxRetries(2), db.WithBackoff(0)), nil)

	attempts := 0
	err := repo.InTx(ctx, func(ctx context.Context, s Store) error {
		attempts++
		customerID, err := s.CreateCustomer(ctx, "Ada", "ada@example.com", "")
		if err != nil {
			return err
		}
		o, ok, err := s.InsertOrder(ctx, domain.Order{
			OrderNumber: "ORD202610140002", CustomerID: customerID, CustomerName: "Ada",
			CustomerEmail: "ada@example.com", TotalAmount: decimal.NewFromInt(20), Status: domain.OrderStatusPending,
		})
		if err != nil {
			return err
		}
		require.True(t, ok, "order number must be free on attempt %d", attempts)
		_, err = s.InsertItem(ctx, domain.OrderItem{OrderID: o.ID, ProductID: productID, VariantID: variantID,
			ProductName: "Tote", VariantName: "Natural", Price: decimal.NewFromInt(20), Quantity: 1})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, src.reconnects)

	var orders, items, customers int
	pool := client.Pool()
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&orders))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM order_items`).Scan(&items))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&customers))
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, items)
	assert.Equal(t, 1, customers)
}
