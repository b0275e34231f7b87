package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
	PaymentStatusPending  PaymentStatus = "Pending"
)

type Booking struct {
	ID          int64
	UserID      int64
	FlightID    int64
	PNR         string
	SeatNo      string
	Status      BookingStatus
	BookingDate time.Time
	CreatedAt   time.Time
}

type Payment struct {
	ID          int64
	BookingID   int64
	Amount      float64
	PaymentDate time.Time
	Status      PaymentStatus
}

// BookingConfirmation is what a successful booking returns to the caller.
type BookingConfirmation struct {
	BookingID     int64
	PNR           string
	AmountCharged float64
}

// BookingRecord is a user-facing booking row joined with its flight and payment.
type BookingRecord struct {
	PNR           string        `json:"pnr"`
	FlightNumber  string        `json:"flight_number"`
	SeatNo        string        `json:"seat_no"`
	Status        BookingStatus `json:"status"`
	BookingDate   time.Time     `json:"booking_date"`
	Amount        float64       `json:"amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}
