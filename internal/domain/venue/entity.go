package venue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyVenueName      = errs.Mark(errors.New("venue name cannot be empty"), errs.ErrValidation)
	ErrVenueNameTooLong    = errs.Mark(errors.New("venue name is too long (max 255 characters)"), errs.ErrValidation)
	ErrInvalidSport        = errs.Mark(errors.New("invalid sport"), errs.ErrValidation)
	ErrNonPositivePrice    = errs.Mark(errors.New("price per hour must be positive"), errs.ErrValidation)
	ErrInvalidOperatingHrs = errs.Mark(errors.New("invalid operating hours"), errs.ErrValidation)
)

const MaxVenueNameLength = 255

type Sport string

const (
	SportSoccer     Sport = "soccer"
	SportBasketball Sport = "basketball"
	SportTennis     Sport = "tennis"
	SportVolleyball Sport = "volleyball"
)

func (s Sport) String() string { return string(s) }

func (s Sport) IsValid() bool {
	switch s {
	case SportSoccer, SportBasketball, SportTennis, SportVolleyball:
		return true
	default:
		return false
	}
}

func NewSport(s string) (Sport, error) {
	sport := Sport(strings.ToLower(strings.TrimSpace(s)))
	if !sport.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSport, s)
	}
	return sport, nil
}

// OperatingHours is the half-open window [Open, Close) of bookable hours.
// Close may be 24 for venues open until midnight.
type OperatingHours struct {
	open  int
	close int
}

func NewOperatingHours(openHour, closeHour int) (OperatingHours, error) {
	if openHour < 0 || closeHour > 24 || openHour > closeHour {
		return OperatingHours{}, fmt.Errorf("%w: %d-%d", ErrInvalidOperatingHrs, openHour, closeHour)
	}
	return OperatingHours{open: openHour, close: closeHour}, nil
}

func (o OperatingHours) Open() int  { return o.open }
func (o OperatingHours) Close() int { return o.close }

func (o OperatingHours) Contains(h calendar.Hour) bool {
	return int(h) >= o.open && int(h) < o.close
}

// Hours enumerates every slot start in the window, ascending.
func (o OperatingHours) Hours() []calendar.Hour {
	out := make([]calendar.Hour, 0, o.close-o.open)
	for h := o.open; h < o.close; h++ {
		out = append(out, calendar.Hour(h))
	}
	return out
}

func (o OperatingHours) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", o.open, o.close)
}

type Venue struct {
	id             uuid.UUID
	name           string
	sport          Sport
	location       string
	pricePerHour   int64
	operatingHours OperatingHours
	active         bool
	createdAt      time.Time
	updatedAt      time.Time
}

type Params struct {
	ID           uuid.UUID
	Name         string
	Sport        Sport
	Location     string
	PricePerHour int64
	Hours        OperatingHours
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewVenue(p Params) (*Venue, error) {
	if err := validateVenueName(p.Name); err != nil {
		return nil, err
	}
	if !p.Sport.IsValid() {
		return nil, ErrInvalidSport
	}
	if p.PricePerHour <= 0 {
		return nil, ErrNonPositivePrice
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Venue{
		id:             id,
		name:           strings.TrimSpace(p.Name),
		sport:          p.Sport,
		location:       strings.TrimSpace(p.Location),
		pricePerHour:   p.PricePerHour,
		operatingHours: p.Hours,
		active:         p.Active,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

// WithPrice returns a copy carrying a new hourly price. Existing
// reservations keep the price they were booked at.
func (v *Venue) WithPrice(pricePerHour int64, now time.Time) (*Venue, error) {
	if pricePerHour <= 0 {
		return nil, ErrNonPositivePrice
	}
	cp := *v
	cp.pricePerHour = pricePerHour
	cp.updatedAt = now
	return &cp, nil
}

func (v *Venue) IsBookable() bool {
	return v.active
}

func validateVenueName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyVenueName
	}
	if len(name) > MaxVenueNameLength {
		return ErrVenueNameTooLong
	}
	return nil
}

func (v *Venue) ID() uuid.UUID                  { return v.id }
func (v *Venue) Name() string                   { return v.name }
func (v *Venue) Sport() Sport                   { return v.sport }
func (v *Venue) Location() string               { return v.location }
func (v *Venue) PricePerHour() int64            { return v.pricePerHour }
func (v *Venue) OperatingHours() OperatingHours { return v.operatingHours }
func (v *Venue) Active() bool                   { return v.active }
func (v *Venue) CreatedAt() time.Time           { return v.createdAt }
func (v *Venue) UpdatedAt() time.Time           { return v.updatedAt }
