package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/slot"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/infra"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/queries"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrVenueNotFound       = errs.Mark(errs.New("venue not found"), errs.ErrVenueNotFound)
	ErrReservationNotFound = errs.Mark(errs.New("reservation not found"), errs.ErrReservationNotFound)
	ErrSlotsTaken          = errs.Mark(errs.New("requested slots are already reserved"), errs.ErrSlotConflict)
	ErrPaymentDeclined     = errs.Mark(errs.New("payment declined"), errs.ErrPaymentFailure)
	ErrPaymentUnavailable  = errs.Mark(errs.New("payment collaborator failed"), errs.ErrPaymentFailure)
	ErrIdempotencyMismatch = errs.Mark(errs.New("idempotency key reused with a different request"), errs.ErrDuplicateRequest)
	ErrHoldExpired         = errs.Mark(errs.New("pending hold has expired"), errs.ErrInvalidTransition)
)

// A duplicate-key failure at commit means a concurrent writer took the same
// idempotency key or token; the unit is rerun this many times. Reruns reuse
// the settled payment and only issue a new token.
const maxCreateAttempts = 3

type CreateReservationInput struct {
	VenueID        uuid.UUID
	ClientID       uuid.UUID
	Date           calendar.Date
	Hours          []calendar.Hour
	Participants   []reservation.Participant
	PaymentMethod  reservation.PaymentMethod
	IdempotencyKey string
}

type CreateReservationResult struct {
	Reservation *queries.ReservationView
	IsReplayed  bool
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (*CreateReservationResult, error)
	CancelReservation(ctx context.Context, reservationID, actorID uuid.UUID) (*queries.ReservationView, error)
	CompleteReservation(ctx context.Context, reservationID uuid.UUID) (*queries.ReservationView, error)
	ConfirmPayment(ctx context.Context, reservationID uuid.UUID) (*queries.ReservationView, error)
	DeclinePayment(ctx context.Context, reservationID uuid.UUID) (*queries.ReservationView, error)
}

type reservationCommandsImpl struct {
	uow      shared.UnitOfWork
	venues   shared.VenueRepository
	locator  shared.ReservationLocator
	factory  *reservation.Factory
	payments PaymentGateway
	tokens   *TokenIssuer
	clock    clock.Clock
	policy   reservation.Policy
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	venues shared.VenueRepository,
	locator shared.ReservationLocator,
	factory *reservation.Factory,
	payments PaymentGateway,
	tokens *TokenIssuer,
	clock clock.Clock,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:      uow,
		venues:   venues,
		locator:  locator,
		factory:  factory,
		payments: payments,
		tokens:   tokens,
		clock:    clock,
		policy:   factory.Policy,
	}
}

func (c *reservationCommandsImpl) CreateReservation(ctx context.Context, in CreateReservationInput) (*CreateReservationResult, error) {
	v, err := c.venues.FindByID(ctx, in.VenueID)
	if err != nil {
		return nil, shared.StoreError(err, ErrVenueNotFound)
	}

	draft := reservation.Draft{
		ID:            uuid.New(),
		ClientID:      in.ClientID,
		Date:          in.Date,
		Hours:         in.Hours,
		Participants:  in.Participants,
		PaymentMethod: in.PaymentMethod,
	}
	requestHash := calculateRequestHash(in)
	charge := &settlement{reference: chargeReference(in, draft.ID)}

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		result, err := c.createOnce(ctx, v, draft, in, requestHash, charge)
		if err == nil {
			return result, nil
		}
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, err
		}
		slog.Warn("reservation create hit a unique constraint, retrying",
			"attempt", attempt+1,
			"venue_id", in.VenueID,
			"date", in.Date.String(),
			"charged", charge.settled,
			"error", err.Error())
		lastErr = err
	}
	return nil, errs.Mark(lastErr, errs.ErrDatabaseOperationFailed)
}

func (c *reservationCommandsImpl) createOnce(
	ctx context.Context,
	v *venue.Venue,
	draft reservation.Draft,
	in CreateReservationInput,
	requestHash string,
	charge *settlement,
) (*CreateReservationResult, error) {
	var result *CreateReservationResult
	key := reservation.PartitionKey{VenueID: v.ID(), Date: draft.Date}

	err := c.uow.WithinPartition(ctx, key, func(ctx context.Context, tx shared.Tx) error {
		if in.IdempotencyKey != "" {
			replayed, err := c.replay(ctx, tx, in, requestHash)
			if err != nil {
				return err
			}
			if replayed != nil {
				result = &CreateReservationResult{Reservation: replayed, IsReplayed: true}
				return nil
			}
		}

		// Validated inside the critical section so "now" is the commit instant.
		res, err := c.factory.CreateReservation(v, draft)
		if err != nil {
			return err
		}

		existing, err := tx.Reservations().ListByPartition(ctx, key)
		if err != nil {
			return shared.StoreError(err, ErrReservationNotFound)
		}
		if taken := slot.Conflicts(slot.Reserved(existing), res.TimeSlots()); len(taken) > 0 {
			return errs.Wrapf(ErrSlotsTaken, "%s on %s: %v", v.Name(), key.Date, calendar.FormatHours(taken))
		}

		if err := c.settlePayment(ctx, tx, res, charge); err != nil {
			return err
		}

		if err := tx.Reservations().Insert(ctx, res); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			if err := tx.Idempotency().Save(ctx, shared.IdempotencyRecord{
				Key:           in.IdempotencyKey,
				ClientID:      in.ClientID,
				RequestHash:   requestHash,
				ReservationID: res.ID(),
				CreatedAt:     res.CreatedAt(),
			}); err != nil {
				return err
			}
		}

		result = &CreateReservationResult{Reservation: queries.NewReservationView(res)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.IsReplayed {
		slog.Info("reservation created",
			"reservation_id", result.Reservation.ID,
			"venue_id", result.Reservation.VenueID,
			"client_id", result.Reservation.ClientID,
			"date", result.Reservation.Date,
			"slots", result.Reservation.TimeSlots,
			"status", result.Reservation.Status,
			"total_price", result.Reservation.TotalPrice)
	}
	return result, nil
}

// replay returns the reservation a previous request with the same key made.
func (c *reservationCommandsImpl) replay(ctx context.Context, tx shared.Tx, in CreateReservationInput, requestHash string) (*queries.ReservationView, error) {
	record, err := tx.Idempotency().Find(ctx, in.ClientID, in.IdempotencyKey)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	if record.RequestHash != requestHash {
		return nil, ErrIdempotencyMismatch
	}
	res, err := tx.Reservations().FindByID(ctx, record.ReservationID)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	return queries.NewReservationView(res), nil
}

// settlement remembers the outcome of the one charge a create call makes.
type settlement struct {
	reference string
	settled   bool
	outcome   PaymentOutcome
}

// chargeReference keys the charge by the client's idempotency key when there
// is one, so concurrent requests sharing a key present the same reference.
func chargeReference(in CreateReservationInput, reservationID uuid.UUID) string {
	if in.IdempotencyKey != "" {
		return "idem:" + in.ClientID.String() + ":" + in.IdempotencyKey
	}
	return "res:" + reservationID.String()
}

// settlePayment charges the collaborator on first use and moves res out of its
// initial state. A decline aborts the whole unit so nothing is persisted.
func (c *reservationCommandsImpl) settlePayment(ctx context.Context, tx shared.Tx, res *reservation.Reservation, charge *settlement) error {
	if !charge.settled {
		outcome, err := c.payments.Charge(ctx, charge.reference, res)
		if err != nil {
			return errs.WithCause(ErrPaymentUnavailable, errs.Wrap(err, "charge reservation"))
		}
		charge.outcome, charge.settled = outcome, true
	}

	now := c.clock.Now()
	switch charge.outcome {
	case PaymentApproved:
		token, err := c.tokens.Issue(ctx, tx.Reservations())
		if err != nil {
			return err
		}
		return res.Confirm(token, now)
	case PaymentDeferred:
		return res.Hold(now, c.policy.PendingHoldTTL)
	case PaymentDeclined:
		return errs.Wrapf(ErrPaymentDeclined, "method %s", res.PaymentMethod())
	default:
		return errs.Wrapf(ErrPaymentUnavailable, "unexpected outcome %d", int(charge.outcome))
	}
}

func (c *reservationCommandsImpl) CancelReservation(ctx context.Context, reservationID, actorID uuid.UUID) (*queries.ReservationView, error) {
	res, err := c.transition(ctx, reservationID, func(ctx context.Context, tx shared.Tx, r *reservation.Reservation, now time.Time) error {
		return r.Cancel(actorID, now, c.policy)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("reservation cancelled",
		"reservation_id", res.ID(),
		"venue_id", res.VenueID(),
		"date", res.Date().String(),
		"released_slots", res.TimeSlots().Strings(),
		"actor_id", actorID)
	return queries.NewReservationView(res), nil
}

func (c *reservationCommandsImpl) CompleteReservation(ctx context.Context, reservationID uuid.UUID) (*queries.ReservationView, error) {
	res, err := c.transition(ctx, reservationID, func(ctx context.Context, tx shared.Tx, r *reservation.Reservation, now time.Time) error {
		return r.Complete(now, c.policy.Location)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("reservation completed", "reservation_id", res.ID(), "date", res.Date().String())
	return queries.NewReservationView(res), nil
}

func (c *reservationCommandsImpl) ConfirmPayment(ctx context.Context, reservationID uuid.UUID) (*queries.ReservationView, error) {
	res, err := c.transition(ctx, reservationID, func(ctx context.Context, tx shared.Tx, r *reservation.Reservation, now time.Time) error {
		if r.Status() != reservation.StatusPending {
			return errs.Wrapf(reservation.ErrInvalidTransition, "%s -> %s", r.Status(), reservation.StatusConfirmed)
		}
		// The sweeper owns the pending -> cancelled move for lapsed holds.
		if r.HoldExpired(now) {
			return ErrHoldExpired
		}
		token, err := c.tokens.Issue(ctx, tx.Reservations())
		if err != nil {
			return err
		}
		return r.Confirm(token, now)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("payment confirmed", "reservation_id", res.ID(), "status", res.Status().String())
	return queries.NewReservationView(res), nil
}

func (c *reservationCommandsImpl) DeclinePayment(ctx context.Context, reservationID uuid.UUID) (*queries.ReservationView, error) {
	res, err := c.transition(ctx, reservationID, func(ctx context.Context, tx shared.Tx, r *reservation.Reservation, now time.Time) error {
		return r.Decline(now)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("payment declined", "reservation_id", res.ID(), "released_slots", res.TimeSlots().Strings())
	return queries.NewReservationView(res), nil
}

type transitionFunc func(ctx context.Context, tx shared.Tx, r *reservation.Reservation, now time.Time) error

// transition reloads the reservation under its partition lock, applies fn and
// persists the result. Nothing is written when fn fails.
func (c *reservationCommandsImpl) transition(ctx context.Context, reservationID uuid.UUID, fn transitionFunc) (*reservation.Reservation, error) {
	located, err := c.locator.FindByID(ctx, reservationID)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}

	var updated *reservation.Reservation
	err = c.uow.WithinPartition(ctx, located.Partition(), func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return shared.StoreError(err, ErrReservationNotFound)
		}
		if err := fn(ctx, tx, current, c.clock.Now()); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func calculateRequestHash(in CreateReservationInput) string {
	participants := make([][2]string, len(in.Participants))
	for i, p := range in.Participants {
		participants[i] = [2]string{p.Name(), p.Phone()}
	}
	data, _ := json.Marshal(struct {
		VenueID       uuid.UUID       `json:"venue_id"`
		Date          string          `json:"date"`
		Hours         []calendar.Hour `json:"hours"`
		Participants  [][2]string     `json:"participants"`
		PaymentMethod string          `json:"payment_method"`
	}{
		VenueID:       in.VenueID,
		Date:          in.Date.String(),
		Hours:         in.Hours,
		Participants:  participants,
		PaymentMethod: in.PaymentMethod.String(),
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
