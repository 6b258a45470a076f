package reservation

import (
	"rogu-booking/internal/domain/venue"
)

type PriceCalculator interface {
	CalculatePrice(v *venue.Venue, slots TimeSlots) Money
}

// HourlyPriceCalculator charges the venue's current hourly rate per slot.
type HourlyPriceCalculator struct{}

func NewHourlyPriceCalculator() *HourlyPriceCalculator {
	return &HourlyPriceCalculator{}
}

func (pc *HourlyPriceCalculator) CalculatePrice(v *venue.Venue, slots TimeSlots) Money {
	return NewMoney(v.PricePerHour()).Times(slots.Len())
}
