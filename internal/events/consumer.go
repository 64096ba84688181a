package events

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"storefront-api/internal/config"
	"storefront-api/internal/logger"
)

// Handler processes one decoded event. Returning an error stops the consumer.
type Handler func(ctx context.Context, ev OrderCreated) error

// Consumer reads OrderCreated records as part of a consumer group.
type Consumer struct {
	reader  *kafkago.Reader
	codec   *Codec
	handler Handler
	logger  *zap.Logger
}

func NewConsumer(cfg config.KafkaConfig, handler Handler, log *zap.Logger) (*Consumer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka brokers not configured")
	}
	codec, err := NewCodec()
	if err != nil {
		return nil, err
	}
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.ConsumerGroup,
		Topic:    cfg.OrderTopic,
		MinBytes: 1e3,
		MaxBytes: 1e6,
	})
	return &Consumer{reader: reader, codec: codec, handler: handler, logger: logger.OrNop(log)}, nil
}

// Run blocks until ctx ends or the handler fails. Records that cannot be
// decoded are logged and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		ev, err := c.codec.Decode(msg.Value)
		if err != nil {
			c.logger.Warn("events: skipping undecodable record",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}
		if err := c.handler(ctx, ev); err != nil {
			return fmt.Errorf("handle order %s: %w", ev.OrderID, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
