package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront-api/internal/domain"
	"storefront-api/internal/importer"
	"storefront-api/internal/logger"
)

//go:embed catalog.csv
var catalog []byte

type CustomerStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}

// Stores groups the repositories the seed writes through.
type Stores struct {
	Products   importer.ProductStore
	Categories importer.CategoryStore
	Customers  CustomerStore
}

var demoCustomer = domain.Customer{
	Name:  "Demo Customer",
	Email: "demo@example.com",
	Phone: "+10000000000",
}

// Apply inserts the demo catalog and a demo customer. Running it again
// leaves existing rows untouched.
func Apply(ctx context.Context, s Stores, log *zap.Logger) error {
	log = logger.OrNop(log)

	res, err := importer.NewCSVImporter(bytes.NewReader(catalog), s.Products, s.Categories, log).Run(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Info("seed catalog applied", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))

	if err := ensureCustomer(ctx, s.Customers, demoCustomer); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}
	return nil
}

func ensureCustomer(ctx context.Context, repo CustomerStore, c domain.Customer) error {
	_, err := repo.GetByEmail(ctx, c.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = repo.Create(ctx, c)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	return err
}
