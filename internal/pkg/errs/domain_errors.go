package errs

import "errors"

// Error taxonomy shared by every layer. Concrete errors are attached to one
// of these with Mark so callers can branch with Is.
var (
	// Input
	ErrValidation = errors.New("validation error")

	// Referential
	ErrVenueNotFound       = errors.New("venue not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Business rules
	ErrSlotConflict             = errors.New("slot conflict")
	ErrInvalidTransition        = errors.New("invalid transition")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrNotElapsed               = errors.New("reservation date has not elapsed")
	ErrDuplicateRequest         = errors.New("duplicate request")
	ErrForbidden                = errors.New("forbidden")

	// Collaborators
	ErrPaymentFailure = errors.New("payment failure")

	// Access control at the venue
	ErrInvalidAccessToken = errors.New("invalid access token")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
