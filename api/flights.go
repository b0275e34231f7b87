package api

import (
	"net/http"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service booking.BookingUseCase
}

type flightDetailsResponse struct {
	FlightNumber   string  `json:"flight_number"`
	JourneyDate    string  `json:"journey_date"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	Duration       string  `json:"duration"`
	Price          float64 `json:"price"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
}

func NewFlightHandler(service booking.BookingUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
	router.GET("/flight/:number", h.details)
}

func (h *FlightHandler) search(c *gin.Context) {
	flights, err := h.service.Search(
		c.Request.Context(),
		c.Query("source"),
		c.Query("destination"),
		c.Query("date"),
	)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "flights": flights, "count": len(flights)})
}

func (h *FlightHandler) details(c *gin.Context) {
	flight, err := h.service.GetFlight(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "flight": toFlightDetails(flight)})
}

func toFlightDetails(f *domain.Flight) flightDetailsResponse {
	return flightDetailsResponse{
		FlightNumber:   f.FlightNumber,
		JourneyDate:    f.JourneyDate.Format("2006-01-02"),
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		Duration:       f.Duration,
		Price:          f.Price,
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
	}
}
