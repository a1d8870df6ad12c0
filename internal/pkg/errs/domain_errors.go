package errs

import "errors"

// Domain-specific sentinel errors shared by the usecase and handler layers
var (
	// Booking errors
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// Job errors
	ErrJobNotFound = errors.New("scheduled job not found")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
