package api

import (
	"net/http"

	"github.com/gdsingh/skybook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookRequest struct {
	FlightID    int64  `json:"flight_id"`
	SeatNo      string `json:"seat_no"`
	JourneyDate string `json:"journey_date"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.book)
	router.GET("/bookings", h.list)
	router.DELETE("/bookings/:pnr", h.cancel)
}

func (h *BookingHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	sess := currentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	conf, err := h.service.Book(c.Request.Context(), booking.BookInput{
		UserID:      sess.UserID,
		Email:       sess.Email,
		FlightID:    req.FlightID,
		SeatNo:      req.SeatNo,
		JourneyDate: req.JourneyDate,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"pnr":     conf.PNR,
		"message": "booking confirmed",
	})
}

func (h *BookingHandler) list(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	records, err := h.service.ListByUser(c.Request.Context(), sess.UserID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": records, "count": len(records)})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), sess.UserID, c.Param("pnr")); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "booking cancelled"})
}
