package reservation

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyTimeSlots         = errs.Mark(errors.New("at least one time slot is required"), errs.ErrValidation)
	ErrDuplicateTimeSlot      = errs.Mark(errors.New("duplicate time slot"), errs.ErrValidation)
	ErrSlotOutsideHours       = errs.Mark(errors.New("time slot outside operating hours"), errs.ErrValidation)
	ErrSlotInPast             = errs.Mark(errors.New("time slot has already started"), errs.ErrValidation)
	ErrDateInPast             = errs.Mark(errors.New("reservation date is in the past"), errs.ErrValidation)
	ErrNoParticipants         = errs.Mark(errors.New("at least one participant is required"), errs.ErrValidation)
	ErrBlankParticipantName   = errs.Mark(errors.New("participant name cannot be blank"), errs.ErrValidation)
	ErrParticipantNameTooLong = errs.Mark(errors.New("participant name is too long"), errs.ErrValidation)
	ErrPhoneTooLong           = errs.Mark(errors.New("participant phone is too long"), errs.ErrValidation)
	ErrInvalidPaymentMethod   = errs.Mark(errors.New("invalid payment method"), errs.ErrValidation)
	ErrInvalidStatus          = errs.Mark(errors.New("invalid reservation status"), errs.ErrValidation)
	ErrEmptyAccessToken       = errs.Mark(errors.New("access token cannot be empty"), errs.ErrValidation)
	ErrVenueNotBookable       = errs.Mark(errors.New("venue is not accepting reservations"), errs.ErrVenueNotFound)

	ErrInvalidTransition     = errs.Mark(errors.New("reservation status transition not allowed"), errs.ErrInvalidTransition)
	ErrTokenAlreadyIssued    = errs.Mark(errors.New("access token already issued"), errs.ErrInvalidTransition)
	ErrHoldStillActive       = errs.Mark(errors.New("pending hold has not expired"), errs.ErrInvalidTransition)
	ErrNotOwner              = errs.Mark(errors.New("reservation belongs to another client"), errs.ErrForbidden)
	ErrCancellationTooLate   = errs.Mark(errors.New("cancellation notice period has passed"), errs.ErrCancellationWindowClosed)
	ErrReservationNotElapsed = errs.Mark(errors.New("reservation date has not fully passed"), errs.ErrNotElapsed)

	ErrEntryNotConfirmed = errs.Mark(errors.New("reservation is not confirmed"), errs.ErrInvalidAccessToken)
	ErrEntryWrongDay     = errs.Mark(errors.New("access token is not valid today"), errs.ErrInvalidAccessToken)
)

// Policy holds the business rules that vary per deployment.
type Policy struct {
	Location           *time.Location
	CancellationNotice time.Duration
	PendingHoldTTL     time.Duration
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

type Reservation struct {
	id            uuid.UUID
	venueID       uuid.UUID
	clientID      uuid.UUID
	date          calendar.Date
	timeSlots     TimeSlots
	totalPrice    Money
	status        Status
	participants  []Participant
	paymentMethod PaymentMethod
	accessToken   AccessToken
	holdExpiresAt *time.Time
	cancelledBy   *uuid.UUID
	cancelReason  CancelReason
	createdAt     time.Time
	updatedAt     time.Time
	confirmedAt   *time.Time
	cancelledAt   *time.Time
	completedAt   *time.Time
}

// Snapshot is the flat persisted form of a reservation.
type Snapshot struct {
	ID            uuid.UUID
	VenueID       uuid.UUID
	ClientID      uuid.UUID
	Date          calendar.Date
	TimeSlots     []calendar.Hour
	TotalPrice    int64
	Status        Status
	Participants  []ParticipantSnapshot
	PaymentMethod PaymentMethod
	AccessToken   string
	HoldExpiresAt *time.Time
	CancelledBy   *uuid.UUID
	CancelReason  CancelReason
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ConfirmedAt   *time.Time
	CancelledAt   *time.Time
	CompletedAt   *time.Time
}

type ParticipantSnapshot struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

func Reconstruct(s Snapshot) *Reservation {
	participants := make([]Participant, len(s.Participants))
	for i, p := range s.Participants {
		participants[i] = Participant{name: p.Name, phone: p.Phone}
	}
	return &Reservation{
		id:            s.ID,
		venueID:       s.VenueID,
		clientID:      s.ClientID,
		date:          s.Date,
		timeSlots:     RestoreTimeSlots(s.TimeSlots),
		totalPrice:    NewMoney(s.TotalPrice),
		status:        s.Status,
		participants:  participants,
		paymentMethod: s.PaymentMethod,
		accessToken:   AccessToken{value: s.AccessToken},
		holdExpiresAt: copyTime(s.HoldExpiresAt),
		cancelledBy:   copyUUID(s.CancelledBy),
		cancelReason:  s.CancelReason,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		confirmedAt:   copyTime(s.ConfirmedAt),
		cancelledAt:   copyTime(s.CancelledAt),
		completedAt:   copyTime(s.CompletedAt),
	}
}

func (r *Reservation) Snapshot() Snapshot {
	participants := make([]ParticipantSnapshot, len(r.participants))
	for i, p := range r.participants {
		participants[i] = ParticipantSnapshot{Name: p.name, Phone: p.phone}
	}
	return Snapshot{
		ID:            r.id,
		VenueID:       r.venueID,
		ClientID:      r.clientID,
		Date:          r.date,
		TimeSlots:     r.timeSlots.Hours(),
		TotalPrice:    r.totalPrice.Amount(),
		Status:        r.status,
		Participants:  participants,
		PaymentMethod: r.paymentMethod,
		AccessToken:   r.accessToken.String(),
		HoldExpiresAt: copyTime(r.holdExpiresAt),
		CancelledBy:   copyUUID(r.cancelledBy),
		CancelReason:  r.cancelReason,
		CreatedAt:     r.createdAt,
		UpdatedAt:     r.updatedAt,
		ConfirmedAt:   copyTime(r.confirmedAt),
		CancelledAt:   copyTime(r.cancelledAt),
		CompletedAt:   copyTime(r.completedAt),
	}
}

// Hold keeps a pending reservation's slots blocked until ttl elapses.
func (r *Reservation) Hold(now time.Time, ttl time.Duration) error {
	if r.status != StatusPending {
		return r.transitionError(StatusPending)
	}
	expires := now.Add(ttl)
	r.holdExpiresAt = &expires
	r.updatedAt = now
	return nil
}

// Confirm attaches the access token. A token is set exactly once.
func (r *Reservation) Confirm(token AccessToken, now time.Time) error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return r.transitionError(StatusConfirmed)
	}
	if !r.accessToken.IsZero() {
		return ErrTokenAlreadyIssued
	}
	if token.IsZero() {
		return ErrEmptyAccessToken
	}
	if len(r.participants) == 0 {
		return ErrNoParticipants
	}
	r.status = StatusConfirmed
	r.accessToken = token
	r.holdExpiresAt = nil
	r.confirmedAt = &now
	r.updatedAt = now
	return nil
}

// Cancel is the client-initiated cancellation of a confirmed reservation.
func (r *Reservation) Cancel(actorID uuid.UUID, now time.Time, policy Policy) error {
	if r.status != StatusConfirmed {
		return r.transitionError(StatusCancelled)
	}
	if actorID != r.clientID {
		return ErrNotOwner
	}
	deadline := r.StartsAt(policy.location()).Add(-policy.CancellationNotice)
	if !now.Before(deadline) {
		return fmt.Errorf("%w: deadline was %s", ErrCancellationTooLate, deadline.Format(time.RFC3339))
	}
	r.markCancelled(now, CancelReasonClient, &actorID)
	return nil
}

// Decline releases a pending reservation whose payment was rejected.
func (r *Reservation) Decline(now time.Time) error {
	if r.status != StatusPending {
		return r.transitionError(StatusCancelled)
	}
	r.markCancelled(now, CancelReasonPaymentDeclined, nil)
	return nil
}

// Expire releases a pending reservation whose hold has run out.
func (r *Reservation) Expire(now time.Time) error {
	if r.status != StatusPending {
		return r.transitionError(StatusCancelled)
	}
	if r.holdExpiresAt != nil && now.Before(*r.holdExpiresAt) {
		return ErrHoldStillActive
	}
	r.markCancelled(now, CancelReasonHoldExpired, nil)
	return nil
}

// Complete closes a confirmed reservation once its calendar day is over.
func (r *Reservation) Complete(now time.Time, loc *time.Location) error {
	if r.status != StatusConfirmed {
		return r.transitionError(StatusCompleted)
	}
	if loc == nil {
		loc = time.UTC
	}
	if !calendar.DateOf(now, loc).After(r.date) {
		return ErrReservationNotElapsed
	}
	r.status = StatusCompleted
	r.completedAt = &now
	r.updatedAt = now
	return nil
}

// CheckAdmission reports whether the token holder may enter at now. Only
// confirmed reservations admit, and only on their own business date.
func (r *Reservation) CheckAdmission(now time.Time, loc *time.Location) error {
	if r.status != StatusConfirmed {
		return fmt.Errorf("%w: status %s", ErrEntryNotConfirmed, r.status)
	}
	if loc == nil {
		loc = time.UTC
	}
	if today := calendar.DateOf(now, loc); today != r.date {
		return fmt.Errorf("%w: booked for %s", ErrEntryWrongDay, r.date)
	}
	return nil
}

func (r *Reservation) markCancelled(now time.Time, reason CancelReason, actorID *uuid.UUID) {
	r.status = StatusCancelled
	r.cancelReason = reason
	r.cancelledBy = actorID
	r.cancelledAt = &now
	r.holdExpiresAt = nil
	r.updatedAt = now
}

func (r *Reservation) transitionError(to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.status, to)
}

func (r *Reservation) BlocksSlots() bool {
	return r.status.BlocksSlots()
}

func (r *Reservation) HoldExpired(now time.Time) bool {
	return r.status == StatusPending && r.holdExpiresAt != nil && !now.Before(*r.holdExpiresAt)
}

func (r *Reservation) StartsAt(loc *time.Location) time.Time {
	return r.date.At(r.timeSlots.Earliest(), loc)
}

func (r *Reservation) EndsAt(loc *time.Location) time.Time {
	return r.date.At(r.timeSlots.Latest(), loc).Add(time.Hour)
}

func (r *Reservation) Partition() PartitionKey {
	return PartitionKey{VenueID: r.venueID, Date: r.date}
}

func (r *Reservation) ID() uuid.UUID                { return r.id }
func (r *Reservation) VenueID() uuid.UUID           { return r.venueID }
func (r *Reservation) ClientID() uuid.UUID          { return r.clientID }
func (r *Reservation) Date() calendar.Date          { return r.date }
func (r *Reservation) TimeSlots() TimeSlots         { return r.timeSlots }
func (r *Reservation) TotalHours() int              { return r.timeSlots.Len() }
func (r *Reservation) TotalPrice() Money            { return r.totalPrice }
func (r *Reservation) Status() Status               { return r.status }
func (r *Reservation) Participants() []Participant  { return slices.Clone(r.participants) }
func (r *Reservation) PaymentMethod() PaymentMethod { return r.paymentMethod }
func (r *Reservation) AccessToken() AccessToken     { return r.accessToken }
func (r *Reservation) HoldExpiresAt() *time.Time    { return copyTime(r.holdExpiresAt) }
func (r *Reservation) CancelledBy() *uuid.UUID      { return copyUUID(r.cancelledBy) }
func (r *Reservation) CancelReason() CancelReason   { return r.cancelReason }
func (r *Reservation) CreatedAt() time.Time         { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time         { return r.updatedAt }
func (r *Reservation) ConfirmedAt() *time.Time      { return copyTime(r.confirmedAt) }
func (r *Reservation) CancelledAt() *time.Time      { return copyTime(r.cancelledAt) }
func (r *Reservation) CompletedAt() *time.Time      { return copyTime(r.completedAt) }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
