package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/logger"
	"storefront-api/internal/migrate"
)

func main() {
	var (
		down    int
		version bool
	)
	flag.IntVar(&down, "down", 0, "Roll back this many migration steps instead of migrating up")
	flag.BoolVar(&version, "version", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	switch {
	case version:
		v, dirty, err := migrate.Version(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal("read schema version", zap.Error(err))
		}
		log.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	case down > 0:
		if err := migrate.Rollback(ctx, cfg.DB.DSN, down); err != nil {
			log.Fatal("roll back migrations", zap.Error(err))
		}
		log.Info("migrations rolled back", zap.Int("steps", down))
	case down < 0:
		flag.Usage()
		os.Exit(2)
	default:
		if err := migrate.Apply(ctx, cfg.DB.DSN); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	}
}
