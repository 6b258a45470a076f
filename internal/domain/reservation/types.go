package reservation

import (
	"fmt"

	"rogu-booking/internal/domain/calendar"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// BlocksSlots reports whether a reservation in this status occupies its hours.
func (s Status) BlocksSlots() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

type PaymentMethod string

const (
	PaymentTraditional PaymentMethod = "traditional"
	PaymentTokenBased  PaymentMethod = "token-based"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	return m == PaymentTraditional || m == PaymentTokenBased
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
	}
	return m, nil
}

type CancelReason string

const (
	CancelReasonClient          CancelReason = "client"
	CancelReasonPaymentDeclined CancelReason = "payment_declined"
	CancelReasonHoldExpired     CancelReason = "hold_expired"
)

// PartitionKey identifies the unit writers are serialized on.
type PartitionKey struct {
	VenueID uuid.UUID
	Date    calendar.Date
}

func (k PartitionKey) String() string {
	return k.VenueID.String() + "|" + k.Date.String()
}
