package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gdsingh/skybook/internal/retry"
	"github.com/segmentio/kafka-go"
)

// NotificationEvent is the payload the worker turns into an email.
type NotificationEvent struct {
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	PNR       string    `json:"pnr,omitempty"`
	FlightID  int64     `json:"flight_id,omitempty"`
	SeatNo    string    `json:"seat_no,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	ResetLink string    `json:"reset_link,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

const (
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventResetRequested   = "reset_requested"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	s := retry.Strategy{Attempts: maxRetries, Delay: 500 * time.Millisecond}
	return s.Do(ctx, func() error {
		return p.Publish(ctx, topic, key, payload)
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
