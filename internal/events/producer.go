package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

const deliveryTimeout = 10 * time.Second

// Producer publishes OrderCreated records keyed by order id.
type Producer struct {
	client *kgo.Client
	topic  string
	codec  *Codec
	logger *zap.Logger
}

func NewProducer(cfg config.KafkaConfig, log *zap.Logger) (*Producer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka brokers not configured")
	}
	codec, err := NewCodec()
	if err != nil {
		return nil, err
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.OrderTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	l := logger.OrNop(log)
	l.Info("events: producer ready", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.OrderTopic))
	return &Producer{client: client, topic: cfg.OrderTopic, codec: codec, logger: l}, nil
}

func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	payload, err := p.codec.Encode(FromOrder(o))
	if err != nil {
		return err
	}
	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(o.ID),
		Value:     payload,
		Timestamp: time.Now().UTC(),
		Headers:   []kgo.RecordHeader{{Key: "event-type", Value: []byte("OrderCreated")}},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}
	p.logger.Debug("events: order created published", zap.String("orderId", o.ID), zap.Int("bytes", len(payload)))
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
