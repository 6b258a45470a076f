package calendar

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"rogu-booking/internal/pkg/errs"
)

var ErrInvalidHour = errs.Mark(errors.New("invalid hour"), errs.ErrValidation)

// Hour is the start of a one-hour slot, 0..23.
type Hour int

func NewHour(h int) (Hour, error) {
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidHour, h)
	}
	return Hour(h), nil
}

// ParseHour accepts "09:00", "9:00" and "9". Anything past the hour must be zero.
func ParseHour(s string) (Hour, error) {
	s = strings.TrimSpace(s)
	hh, mm, hasMinutes := strings.Cut(s, ":")
	if hasMinutes && mm != "00" {
		return 0, fmt.Errorf("%w: %q is not on the hour", ErrInvalidHour, s)
	}
	n, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHour, s)
	}
	return NewHour(n)
}

func (h Hour) Int() int { return int(h) }

func (h Hour) String() string {
	return fmt.Sprintf("%02d:00", int(h))
}

func (h Hour) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hour) UnmarshalText(b []byte) error {
	parsed, err := ParseHour(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HourSet is an unordered set of hours; Sorted gives the canonical order.
type HourSet map[Hour]struct{}

func NewHourSet(hours ...Hour) HourSet {
	s := make(HourSet, len(hours))
	for _, h := range hours {
		s[h] = struct{}{}
	}
	return s
}

func (s HourSet) Add(hours ...Hour) {
	for _, h := range hours {
		s[h] = struct{}{}
	}
}

func (s HourSet) Contains(h Hour) bool {
	_, ok := s[h]
	return ok
}

func (s HourSet) Len() int { return len(s) }

// Intersect returns the hours of hs that are in s, ascending.
func (s HourSet) Intersect(hs []Hour) []Hour {
	var out []Hour
	for _, h := range hs {
		if s.Contains(h) {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s HourSet) Sorted() []Hour {
	out := make([]Hour, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

func FormatHours(hours []Hour) []string {
	out := make([]string, len(hours))
	for i, h := range hours {
		out[i] = h.String()
	}
	return out
}
