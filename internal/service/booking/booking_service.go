package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gdsingh/skybook/internal/cache"
	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/kafka"
	"github.com/gdsingh/skybook/internal/repository"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.BookingConfirmation, error)
	Search(ctx context.Context, source, destination, date string) ([]domain.FlightSummary, error)
	GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error)
	Cancel(ctx context.Context, userID int64, pnr string) error
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingRecord, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              cache.SearchCache
	producer           Producer
	notificationsTopic string
	searchTTL          time.Duration
	pnrAttempts        int
}

type BookInput struct {
	UserID      int64  `json:"-"`
	Email       string `json:"-"`
	FlightID    int64  `json:"flight_id"`
	SeatNo      string `json:"seat_no"`
	JourneyDate string `json:"journey_date"`
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	searchCache cache.SearchCache,
	producer Producer,
	notificationsTopic string,
	searchTTL time.Duration,
	pnrAttempts int,
) *BookingService {
	if pnrAttempts <= 0 {
		pnrAttempts = 5
	}
	return &BookingService{
		bookings:           bookings,
		flights:            flights,
		cache:              searchCache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		searchTTL:          searchTTL,
		pnrAttempts:        pnrAttempts,
	}
}

// Book reserves a seat on the flight and records the payment in a single
// transaction. The generated PNR is unique across bookings; on a collision
// the whole transaction is retried with a fresh code.
func (s *BookingService) Book(ctx context.Context, input BookInput) (*domain.BookingConfirmation, error) {
	if input.FlightID <= 0 {
		return nil, domain.Invalid("flight id must be positive")
	}
	if input.SeatNo == "" {
		return nil, domain.Invalid("seat number is required")
	}
	bookingDate := time.Now()
	if input.JourneyDate != "" {
		parsed, err := time.Parse("2006-01-02", input.JourneyDate)
		if err != nil {
			return nil, domain.Invalid("journey date must be YYYY-MM-DD")
		}
		bookingDate = parsed
	}

	for attempt := 0; attempt < s.pnrAttempts; attempt++ {
		pnr, err := newPNR()
		if err != nil {
			return nil, err
		}
		confirmation, err := s.bookings.CreateConfirmed(ctx, input.UserID, input.FlightID, input.SeatNo, pnr, bookingDate)
		if errors.Is(err, repository.ErrPNRTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		event := kafka.NotificationEvent{
			Type:     kafka.EventBookingConfirmed,
			Email:    input.Email,
			PNR:      confirmation.PNR,
			FlightID: input.FlightID,
			SeatNo:   input.SeatNo,
			Amount:   confirmation.AmountCharged,
		}
		if err := s.publish(ctx, confirmation.PNR, event); err != nil {
			log.Printf("WARNING: failed to publish booking_confirmed event for %s: %v", confirmation.PNR, err)
		}
		return confirmation, nil
	}
	return nil, domain.ErrCodeGenerationFailed
}

func (s *BookingService) Search(ctx context.Context, source, destination, date string) ([]domain.FlightSummary, error) {
	if source == "" || destination == "" {
		return nil, domain.Invalid("source and destination are required")
	}
	if date == "" {
		return nil, domain.Invalid("journey date is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, domain.Invalid("journey date must be YYYY-MM-DD")
	}

	key := cache.SearchKey(source, destination, date)
	return s.cache.GetOrCompute(ctx, key, s.searchTTL, func(ctx context.Context) ([]domain.FlightSummary, error) {
		return s.flights.Search(ctx, source, destination, date)
	})
}

// GetFlight returns full details for one flight, looked up by its
// public flight number.
func (s *BookingService) GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	if flightNumber == "" {
		return nil, domain.Invalid("flight number is required")
	}
	return s.flights.GetByNumber(ctx, flightNumber)
}

func (s *BookingService) Cancel(ctx context.Context, userID int64, pnr string) error {
	if pnr == "" {
		return domain.Invalid("pnr is required")
	}
	if err := s.bookings.Cancel(ctx, userID, pnr); err != nil {
		return err
	}

	event := kafka.NotificationEvent{
		Type: kafka.EventBookingCancelled,
		PNR:  pnr,
	}
	if err := s.publish(ctx, pnr, event); err != nil {
		log.Printf("WARNING: failed to publish booking_cancelled event for %s: %v", pnr, err)
	}
	return nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]domain.BookingRecord, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) publish(ctx context.Context, key string, event kafka.NotificationEvent) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	return s.producer.Publish(ctx, s.notificationsTopic, key, event)
}

var _ BookingUseCase = (*BookingService)(nil)
