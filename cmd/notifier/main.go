package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/events"
	"storefront-api/internal/logger"
)

// notifier consumes order-created events and emits a confirmation per order.
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
	log = log.With(zap.String("service", "notifier"))

	if !cfg.Kafka.Enabled() {
		log.Fatal("KAFKA_BROKERS is empty")
	}

	confirm := func(_ context.Context, ev events.OrderCreated) error {
		log.Info("order confirmation",
			zap.String("orderNumber", ev.OrderNumber),
			zap.String("to", ev.CustomerEmail),
			zap.String("total", ev.TotalAmount),
			zap.Int("items", len(ev.Items)),
		)
		return nil
	}

	consumer, err := events.NewConsumer(cfg.Kafka, confirm, log)
	if err != nil {
		log.Fatal("init consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notifier started", zap.String("topic", cfg.Kafka.OrderTopic))
	if err := consumer.Run(ctx); err != nil {
		log.Error("consumer stopped", zap.Error(err))
		return
	}
	log.Info("notifier stopped")
}
