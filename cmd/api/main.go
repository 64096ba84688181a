package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/events"
	"storefront-api/internal/httpserver"
	"storefront-api/internal/logger"
	"storefront-api/internal/media"
	categoryrepo "storefront-api/internal/repository/category"
	customerrepo "storefront-api/internal/repository/customer"
	orderrepo "storefront-api/internal/repository/order"
	productrepo "storefront-api/internal/repository/product"
	reviewrepo "storefront-api/internal/repository/review"
	statsrepo "storefront-api/internal/repository/stats"
	categorysvc "storefront-api/internal/service/category"
	customersvc "storefront-api/internal/service/customer"
	ordersvc "storefront-api/internal/service/order"
	productsvc "storefront-api/internal/service/product"
	reviewsvc "storefront-api/internal/service/review"
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
	log = log.With(zap.String("service", "api"))

	ctx := context.Background()
	client, err := db.NewClient(ctx, cfg.DB.DSN, cfg.DB.MaxConns, log)
	if err != nil {
		log.Fatal("connect to db", zap.Error(err))
	}
	defer client.Close()

	exec := db.NewExecutor(client, log,
		db.WithMaxRetries(cfg.DB.MaxRetries),
		db.WithBackoff(cfg.DB.RetryBackoff),
	)

	var publisher ordersvc.Publisher
	if cfg.Kafka.Enabled() {
		producer, err := events.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Fatal("init kafka producer", zap.Error(err))
		}
		defer producer.Close()
		publisher = producer
	} else {
		log.Info("kafka brokers not configured, order events disabled")
	}

	uploader := media.NewUploader(
		media.Processor{MaxWidth: cfg.Media.MaxWidth, Quality: cfg.Media.Quality},
		media.NewLocalStorage(cfg.Media.UploadDir, cfg.Media.PublicBaseURL),
		log,
	)

	srv, err := httpserver.New(cfg.HTTPAddr, log, client, httpserver.Deps{
		CategorySvc: categorysvc.New(categoryrepo.NewPostgres(exec, log)),
		ProductSvc:  productsvc.New(productrepo.NewPostgres(exec, log)),
		CustomerSvc: customersvc.New(customerrepo.NewPostgres(exec, log)),
		OrderSvc:    ordersvc.New(orderrepo.NewPostgres(exec, log), publisher, log),
		ReviewSvc:   reviewsvc.New(reviewrepo.NewPostgres(exec, log)),
		Stats:       statsrepo.NewPostgres(exec, log),
		Uploader:    uploader,
	}, httpserver.Options{
		CORSOrigins:    cfg.CORSOrigins,
		UploadDir:      cfg.Media.UploadDir,
		MaxUploadBytes: cfg.Media.MaxBytes,
	})
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("server stopped")
	}
}
