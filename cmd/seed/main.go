package main

import (
	"context"

	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/logger"
	categoryrepo "storefront-api/internal/repository/category"
	customerrepo "storefront-api/internal/repository/customer"
	productrepo "storefront-api/internal/repository/product"
	"storefront-api/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("service", "seed"))

	ctx := context.Background()
	client, err := db.NewClient(ctx, cfg.DB.DSN, cfg.DB.MaxConns, log)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer client.Close()

	exec := db.NewExecutor(client, log, db.WithMaxRetries(cfg.DB.MaxRetries), db.WithBackoff(cfg.DB.RetryBackoff))
	stores := seed.Stores{
		Products:   productrepo.NewPostgres(exec, log),
		Categories: categoryrepo.NewPostgres(exec, log),
		Customers:  customerrepo.NewPostgres(exec, log),
	}
	if err := seed.Apply(ctx, stores, log); err != nil {
		log.Fatal("seed apply", zap.Error(err))
	}

	log.Info("seed applied")
}
