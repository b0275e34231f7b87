// Package email formats and delivers notification emails. Delivery is
// console-mode: messages are logged, not sent over SMTP.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/gdsingh/skybook/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	var body string
	switch event.Type {
	case kafka.EventBookingConfirmed:
		body = fmt.Sprintf("Booking confirmed! Your PNR is %s (seat %s, amount %.2f).", event.PNR, event.SeatNo, event.Amount)
	case kafka.EventBookingCancelled:
		body = fmt.Sprintf("Booking %s has been cancelled and your payment refunded.", event.PNR)
	case kafka.EventResetRequested:
		body = fmt.Sprintf("Reset your password here: %s (link valid until %s).", event.ResetLink, event.ExpiresAt.Format("15:04 MST"))
	default:
		body = fmt.Sprintf("Notification: %s", event.Type)
	}

	log.Printf("email to %s: %s", event.Email, body)
	return nil
}
