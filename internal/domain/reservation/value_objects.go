package reservation

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/venue"
)

const (
	MaxParticipantNameLength = 100
	MaxPhoneLength           = 32
)

// TimeSlots is a non-empty, duplicate-free, ascending set of hours inside a
// venue's operating window.
type TimeSlots struct {
	hours []calendar.Hour
}

func NewTimeSlots(hours []calendar.Hour, window venue.OperatingHours) (TimeSlots, error) {
	if len(hours) == 0 {
		return TimeSlots{}, ErrEmptyTimeSlots
	}
	seen := calendar.NewHourSet()
	for _, h := range hours {
		if seen.Contains(h) {
			return TimeSlots{}, fmt.Errorf("%w: %s", ErrDuplicateTimeSlot, h)
		}
		if !window.Contains(h) {
			return TimeSlots{}, fmt.Errorf("%w: %s outside %s", ErrSlotOutsideHours, h, window)
		}
		seen.Add(h)
	}
	return TimeSlots{hours: seen.Sorted()}, nil
}

// RestoreTimeSlots trusts persisted data and only normalises the order.
func RestoreTimeSlots(hours []calendar.Hour) TimeSlots {
	cp := slices.Clone(hours)
	slices.Sort(cp)
	return TimeSlots{hours: cp}
}

func (t TimeSlots) Hours() []calendar.Hour { return slices.Clone(t.hours) }
func (t TimeSlots) Len() int               { return len(t.hours) }

func (t TimeSlots) Earliest() calendar.Hour {
	return t.hours[0]
}

func (t TimeSlots) Latest() calendar.Hour {
	return t.hours[len(t.hours)-1]
}

func (t TimeSlots) Strings() []string {
	return calendar.FormatHours(t.hours)
}

type Participant struct {
	name  string
	phone string
}

func NewParticipant(name, phone string) (Participant, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return Participant{}, ErrBlankParticipantName
	}
	if utf8.RuneCountInString(name) > MaxParticipantNameLength {
		return Participant{}, ErrParticipantNameTooLong
	}
	if len(phone) > MaxPhoneLength {
		return Participant{}, ErrPhoneTooLong
	}
	return Participant{name: name, phone: phone}, nil
}

func (p Participant) Name() string  { return p.name }
func (p Participant) Phone() string { return p.phone }

type Money struct {
	amount int64
}

func NewMoney(amount int64) Money {
	return Money{amount: amount}
}

// Amount is expressed in minor currency units.
func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Times(n int) Money {
	return Money{amount: m.amount * int64(n)}
}

// AccessToken is the opaque credential shown as a QR code at the venue.
type AccessToken struct {
	value string
}

func NewAccessToken(s string) (AccessToken, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AccessToken{}, ErrEmptyAccessToken
	}
	return AccessToken{value: s}, nil
}

func (t AccessToken) String() string { return t.value }
func (t AccessToken) IsZero() bool   { return t.value == "" }
