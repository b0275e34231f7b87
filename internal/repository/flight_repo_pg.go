package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Search(ctx context.Context, sourceCity, destCity, date string) ([]domain.FlightSummary, error)
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
}

type PGFlightRepository struct {
	pool *pgdb.Pool
}

func NewFlightRepository(pool *pgdb.Pool) FlightRepository {
	return &PGFlightRepository{pool: pool}
}

func (r *PGFlightRepository) Search(ctx context.Context, sourceCity, destCity, date string) ([]domain.FlightSummary, error) {
	flights := make([]domain.FlightSummary, 0)
	err := r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT f.flight_number, a.airline_name, f.departure_time, f.arrival_time, f.duration, f.price, f.available_seats
			FROM flights f
			JOIN airlines a ON f.airline_id = a.airline_id
			JOIN airports src ON f.source_airport_id = src.airport_id
			JOIN airports dst ON f.destination_airport_id = dst.airport_id
			WHERE lower(src.city) = lower($1) AND lower(dst.city) = lower($2) AND f.journey_date = $3
			ORDER BY f.price ASC`, sourceCity, destCity, date)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s domain.FlightSummary
			if err := rows.Scan(&s.FlightNumber, &s.AirlineName, &s.DepartureTime, &s.ArrivalTime, &s.Duration, &s.Price, &s.AvailableSeats); err != nil {
				return err
			}
			flights = append(flights, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	var f domain.Flight
	err := r.pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT flight_id, flight_number, airline_id, journey_date, departure_time, arrival_time, duration, price, total_seats, available_seats
			FROM flights WHERE flight_number = $1`, flightNumber).
			Scan(&f.ID, &f.FlightNumber, &f.AirlineID, &f.JourneyDate, &f.DepartureTime, &f.ArrivalTime, &f.Duration, &f.Price, &f.TotalSeats, &f.AvailableSeats)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
