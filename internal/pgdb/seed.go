package pgdb

import (
	"context"
	"fmt"
	"log"
	"time"
)

// SeedDemoData loads a small reference dataset for local development.
// It is a no-op when any flight already exists. Reference rows go in as
// one transaction; the flight rows are inserted as a chunked batch.
func SeedDemoData(ctx context.Context, exec *Executor) error {
	res, err := exec.Execute(ctx, Statement{SQL: `SELECT COUNT(*) AS n FROM flights`}, FetchOne)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if n, _ := res.Row["n"].(int64); n > 0 {
		return nil
	}

	_, err = exec.ExecuteTransaction(ctx, []Statement{
		{SQL: `INSERT INTO airlines (airline_name) VALUES ('SkyBook Air'), ('Northwind') ON CONFLICT DO NOTHING`},
		{SQL: `INSERT INTO airports (airport_name, city) VALUES
			('Indira Gandhi International', 'Delhi'),
			('Chhatrapati Shivaji Maharaj International', 'Mumbai'),
			('Kempegowda International', 'Bangalore')`},
	})
	if err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}

	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	flightRows := [][]any{
		{"SB101", 1, 1, 2, day, "06:00", "08:10", "2h 10m", 119.00, 180, 180},
		{"SB103", 1, 1, 2, day, "09:30", "11:40", "2h 10m", 149.00, 180, 180},
		{"SB205", 1, 2, 1, day, "07:15", "09:25", "2h 10m", 129.00, 180, 180},
		{"NW410", 2, 1, 3, day, "10:00", "12:45", "2h 45m", 99.00, 150, 150},
		{"NW411", 2, 3, 1, day, "14:00", "16:45", "2h 45m", 109.00, 150, 150},
	}

	inserted, err := exec.ExecuteBatch(ctx, `
		INSERT INTO flights (flight_number, airline_id, source_airport_id, destination_airport_id,
			journey_date, departure_time, arrival_time, duration, price, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, flightRows, 0)
	if err != nil {
		return fmt.Errorf("seed flights: %w", err)
	}
	log.Printf("seeded %d demo flights", inserted)
	return nil
}
