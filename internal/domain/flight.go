package domain

import "time"

type Flight struct {
	ID             int64
	FlightNumber   string
	AirlineID      int64
	SourceCity     string
	DestCity       string
	JourneyDate    time.Time
	DepartureTime  string
	ArrivalTime    string
	Duration       string
	TotalSeats     int
	AvailableSeats int
	Price          float64
}

// FlightSummary is a row of search output, joined across flights,
// airlines, and airports.
type FlightSummary struct {
	FlightNumber   string  `json:"flight_number"`
	AirlineName    string  `json:"airline_name"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	Duration       string  `json:"duration"`
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"available_seats"`
}
