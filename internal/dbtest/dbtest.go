// Package dbtest opens the integration database for repository tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"storefront-api/internal/db"
	"storefront-api/internal/migrate"
)

// Executor connects to TEST_DB_DSN, applies migrations and empties every
// table. Tests are skipped when TEST_DB_DSN is unset.
func Executor(t *testing.T) (*db.Executor, *db.Client) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	require.NoError(t, migrate.Apply(ctx, dsn), "apply migrations")
	client, err := db.NewClient(ctx, dsn, 4, nil)
	require.NoError(t, err, "connect db")
	t.Cleanup(client.Close)

	_, err = client.Pool().Exec(ctx, `TRUNCATE reviews, order_items, orders, customers, product_variants, products, categories RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate tables")
	return db.NewExecutor(client, nil, db.WithBackoff(0)), client
}
