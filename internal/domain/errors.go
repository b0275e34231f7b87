package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionUnavailable indicates the database could not be reached
	// after the pool exhausted its acquire retries.
	ErrConnectionUnavailable = errors.New("database connection unavailable")
	// ErrIntegrityViolation indicates a constraint conflict that retrying
	// would not resolve.
	ErrIntegrityViolation = errors.New("integrity violation")
	// ErrNoSeatsAvailable is the expected rejection when a flight has no
	// free seats left.
	ErrNoSeatsAvailable = errors.New("flight is fully booked")
	// ErrDuplicateBooking indicates the user already holds a confirmed
	// booking for this flight.
	ErrDuplicateBooking = errors.New("you already have a booking for this flight")
	// ErrCodeGenerationFailed indicates repeated PNR collisions.
	ErrCodeGenerationFailed = errors.New("could not generate a unique reservation code")
	// ErrInvalidResetToken covers missing, used, and expired reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrRateLimited indicates too many reset requests inside the window.
	ErrRateLimited = errors.New("too many password reset requests")

	ErrFlightNotFound     = errors.New("flight not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrEmailNotFound      = errors.New("email address not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrValidation marks client-input failures so the transport layer can
	// answer with a 400 instead of a 500.
	ErrValidation = errors.New("invalid input")
)

func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
