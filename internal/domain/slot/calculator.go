// Package slot derives the availability of a venue's hourly slots. Nothing
// here is stored; every value is recomputed from the venue and the
// reservations that currently block it.
package slot

import (
	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
)

type Slot struct {
	Hour   calendar.Hour
	Status Status
}

// Reserved collects the hours held by pending or confirmed reservations.
// Reservations for other partitions must be filtered out by the caller.
func Reserved(reservations []*reservation.Reservation) calendar.HourSet {
	set := calendar.NewHourSet()
	for _, r := range reservations {
		if !r.BlocksSlots() {
			continue
		}
		set.Add(r.TimeSlots().Hours()...)
	}
	return set
}

// Schedule lists every hour of the operating window with its status.
func Schedule(hours venue.OperatingHours, reserved calendar.HourSet) []Slot {
	window := hours.Hours()
	out := make([]Slot, 0, len(window))
	for _, h := range window {
		status := StatusAvailable
		if reserved.Contains(h) {
			status = StatusReserved
		}
		out = append(out, Slot{Hour: h, Status: status})
	}
	return out
}

// Available returns the free hours of the window, ascending.
func Available(hours venue.OperatingHours, reserved calendar.HourSet) []calendar.Hour {
	out := make([]calendar.Hour, 0, hours.Close()-hours.Open())
	for _, h := range hours.Hours() {
		if !reserved.Contains(h) {
			out = append(out, h)
		}
	}
	return out
}

// Conflicts returns the requested hours that are already reserved, ascending.
func Conflicts(reserved calendar.HourSet, requested reservation.TimeSlots) []calendar.Hour {
	return reserved.Intersect(requested.Hours())
}
