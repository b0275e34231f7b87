package api

import (
	"errors"
	"net/http"

	"github.com/gdsingh/skybook/internal/domain"
)

// statusFor maps domain errors to HTTP status codes. Anything unmapped
// is treated as an internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSeatsAvailable),
		errors.Is(err, domain.ErrDuplicateBooking),
		errors.Is(err, domain.ErrInvalidResetToken),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrEmailNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrConnectionUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
