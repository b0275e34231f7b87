package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gdsingh/skybook/config"
)

// Consumer reads notification events from the notifications topic and
// delivers them decoded to a handler. A payload that fails to decode is
// logged and skipped rather than stalling the group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(cfg config.KafkaConfig) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			GroupID:           cfg.GroupID,
			Topic:             cfg.NotificationsTopic,
			MinBytes:          cfg.Consumer.MinBytes,
			MaxBytes:          cfg.Consumer.MaxBytes,
			HeartbeatInterval: time.Duration(cfg.Consumer.HeartbeatSeconds) * time.Second,
			SessionTimeout:    time.Duration(cfg.Consumer.SessionTimeoutSeconds) * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, NotificationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			log.Printf("WARNING: skipping message at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(value []byte) (NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("decode notification event: %w", err)
	}
	if event.Type == "" {
		return NotificationEvent{}, fmt.Errorf("notification event missing type")
	}
	return event, nil
}
