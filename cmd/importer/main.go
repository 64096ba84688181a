package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/importer"
	"storefront-api/internal/logger"
	categoryrepo "storefront-api/internal/repository/category"
	productrepo "storefront-api/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("service", "importer"))

	ctx := context.Background()
	client, err := db.NewClient(ctx, cfg.DB.DSN, cfg.DB.MaxConns, log)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer client.Close()
	exec := db.NewExecutor(client, log, db.WithMaxRetries(cfg.DB.MaxRetries), db.WithBackoff(cfg.DB.RetryBackoff))

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(exec, log), categoryrepo.NewPostgres(exec, log), log)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}

	log.Info("import finished",
		zap.String("file", filePath),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
