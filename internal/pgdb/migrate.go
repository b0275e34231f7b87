package pgdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist. Idempotent; run at
// startup by cmd/app.
func Migrate(ctx context.Context, pool *Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS airlines (
			airline_id BIGSERIAL PRIMARY KEY,
			airline_name TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS airports (
			airport_id BIGSERIAL PRIMARY KEY,
			airport_name TEXT NOT NULL,
			city TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS flights (
			flight_id BIGSERIAL PRIMARY KEY,
			flight_number TEXT UNIQUE NOT NULL,
			airline_id BIGINT NOT NULL REFERENCES airlines(airline_id),
			source_airport_id BIGINT NOT NULL REFERENCES airports(airport_id),
			destination_airport_id BIGINT NOT NULL REFERENCES airports(airport_id),
			journey_date DATE NOT NULL,
			departure_time TEXT NOT NULL,
			arrival_time TEXT NOT NULL,
			duration TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			total_seats INT NOT NULL,
			available_seats INT NOT NULL,
			CHECK (available_seats >= 0 AND available_seats <= total_seats)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			booking_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			flight_id BIGINT NOT NULL REFERENCES flights(flight_id),
			booking_date DATE NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('Pending','Confirmed','Cancelled')),
			seat_no TEXT NOT NULL,
			pnr TEXT NOT NULL CONSTRAINT bookings_pnr_key UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			payment_id BIGSERIAL PRIMARY KEY,
			booking_id BIGINT UNIQUE NOT NULL REFERENCES bookings(booking_id),
			amount NUMERIC(10,2) NOT NULL,
			payment_date DATE NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('Paid','Refunded','Pending'))
		)`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			token_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			email TEXT NOT NULL,
			reset_token TEXT UNIQUE NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			is_used BOOLEAN NOT NULL DEFAULT FALSE,
			used_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_status ON bookings(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_route_date ON flights(source_airport_id, destination_airport_id, journey_date)`,
		`CREATE INDEX IF NOT EXISTS idx_flights_avail ON flights(available_seats, price)`,
		`CREATE INDEX IF NOT EXISTS idx_airports_city ON airports(city)`,
		`CREATE INDEX IF NOT EXISTS idx_reset_tokens_email_created ON password_reset_tokens(email, created_at)`,
	}

	return pool.WithConn(ctx, func(conn *pgxpool.Conn) error {
		for _, stmt := range stmts {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}
