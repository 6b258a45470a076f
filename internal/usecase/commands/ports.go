package commands

import (
	"context"

	"rogu-booking/internal/domain/reservation"
)

type PaymentOutcome int

const (
	// PaymentApproved settles the charge synchronously.
	PaymentApproved PaymentOutcome = iota + 1
	// PaymentDeferred leaves the charge open until the processor calls back.
	PaymentDeferred
	PaymentDeclined
)

func (o PaymentOutcome) String() string {
	switch o {
	case PaymentApproved:
		return "approved"
	case PaymentDeferred:
		return "deferred"
	case PaymentDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// PaymentGateway is the external payment collaborator. reference is stable
// for one booking attempt, so a provider can settle a repeated reference
// without moving money twice.
type PaymentGateway interface {
	Charge(ctx context.Context, reference string, res *reservation.Reservation) (PaymentOutcome, error)
}

// TokenGenerator produces candidate access tokens. Uniqueness is checked by
// the issuer against the store.
type TokenGenerator interface {
	Generate() (string, error)
}
