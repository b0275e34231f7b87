package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPNRTaken reports a reservation-code collision; the service
// regenerates and retries.
var ErrPNRTaken = errors.New("reservation code already taken")

type BookingRepository interface {
	CreateConfirmed(ctx context.Context, userID, flightID int64, seatNo, pnr string, bookingDate time.Time) (*domain.BookingConfirmation, error)
	Cancel(ctx context.Context, userID int64, pnr string) error
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingRecord, error)
}

type PGBookingRepository struct {
	pool *pgdb.Pool
	exec *pgdb.Executor
}

func NewBookingRepository(pool *pgdb.Pool, exec *pgdb.Executor) BookingRepository {
	return &PGBookingRepository{pool: pool, exec: exec}
}

// CreateConfirmed reserves one seat atomically: the flight row is
// locked for the duration of the transaction, so two concurrent
// bookings on the last seat serialize and the loser sees zero seats.
func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, userID, flightID int64, seatNo, pnr string, bookingDate time.Time) (*domain.BookingConfirmation, error) {
	var conf domain.BookingConfirmation
	err := r.exec.InTx(ctx, func(tx pgx.Tx) error {
		var available int
		var price float64
		err := tx.QueryRow(ctx, `SELECT available_seats, price FROM flights WHERE flight_id = $1 FOR UPDATE`, flightID).
			Scan(&available, &price)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrFlightNotFound
		}
		if err != nil {
			return fmt.Errorf("lock flight: %w", err)
		}
		if available <= 0 {
			return domain.ErrNoSeatsAvailable
		}

		var duplicate bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE user_id = $1 AND flight_id = $2 AND status = 'Confirmed')`, userID, flightID).
			Scan(&duplicate); err != nil {
			return fmt.Errorf("duplicate check: %w", err)
		}
		if duplicate {
			return domain.ErrDuplicateBooking
		}

		var bookingID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (user_id, flight_id, booking_date, status, seat_no, pnr)
			VALUES ($1, $2, $3, 'Confirmed', $4, $5)
			RETURNING booking_id`, userID, flightID, bookingDate, seatNo, pnr).
			Scan(&bookingID)
		if err != nil {
			if pgdb.IsUniqueViolation(err, "bookings_pnr_key") {
				return ErrPNRTaken
			}
			return fmt.Errorf("insert booking: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO payments (booking_id, amount, payment_date, status)
			VALUES ($1, $2, $3, 'Paid')`, bookingID, price, bookingDate); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		tag, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - 1 WHERE flight_id = $1 AND available_seats > 0`, flightID)
		if err != nil {
			return fmt.Errorf("decrement seats: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNoSeatsAvailable
		}

		conf = domain.BookingConfirmation{BookingID: bookingID, PNR: pnr, AmountCharged: price}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

// Cancel flips a confirmed booking to Cancelled, refunds its payment,
// and restores the seat, all in one transaction.
func (r *PGBookingRepository) Cancel(ctx context.Context, userID int64, pnr string) error {
	return r.exec.InTx(ctx, func(tx pgx.Tx) error {
		var bookingID, flightID int64
		err := tx.QueryRow(ctx, `
			UPDATE bookings SET status = 'Cancelled'
			WHERE pnr = $1 AND user_id = $2 AND status = 'Confirmed'
			RETURNING booking_id, flight_id`, pnr, userID).
			Scan(&bookingID, &flightID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1 WHERE flight_id = $1`, flightID); err != nil {
			return fmt.Errorf("restore seat: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE payments SET status = 'Refunded' WHERE booking_id = $1`, bookingID); err != nil {
			return fmt.Errorf("refund payment: %w", err)
		}
		return nil
	})
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingRecord, error) {
	records := make([]domain.BookingRecord, 0)
	err := r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT b.pnr, f.flight_number, b.seat_no, b.status, b.booking_date, p.amount, p.status
			FROM bookings b
			JOIN flights f ON b.flight_id = f.flight_id
			JOIN payments p ON p.booking_id = b.booking_id
			WHERE b.user_id = $1
			ORDER BY b.created_at DESC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rec domain.BookingRecord
			if err := rows.Scan(&rec.PNR, &rec.FlightNumber, &rec.SeatNo, &rec.Status, &rec.BookingDate, &rec.Amount, &rec.PaymentStatus); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return records, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
