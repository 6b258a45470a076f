//go:build unit || e2e || integration

package builder

import (
	"time"

	"rogu-booking/internal/domain/venue"

	"github.com/google/uuid"
)

type VenueBuilder struct {
	ID           uuid.UUID
	Name         string
	Sport        string
	Location     string
	PricePerHour int64
	Open         int
	Close        int
	Active       bool
	CreatedAt    time.Time
}

// NewVenueBuilder defaults to "Cancha Central": soccer, 08:00-22:00, 15000/hour.
func NewVenueBuilder() *VenueBuilder {
	return &VenueBuilder{
		ID:           uuid.New(),
		Name:         "Cancha Central",
		Sport:        "soccer",
		Location:     "Av. Principal 123",
		PricePerHour: 15000,
		Open:         8,
		Close:        22,
		Active:       true,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (v *VenueBuilder) With(mutate func(*VenueBuilder)) *VenueBuilder {
	mutate(v)
	return v
}

func (v *VenueBuilder) BuildDomain() (*venue.Venue, error) {
	sport, err := venue.NewSport(v.Sport)
	if err != nil {
		return nil, err
	}
	hours, err := venue.NewOperatingHours(v.Open, v.Close)
	if err != nil {
		return nil, err
	}
	return venue.NewVenue(venue.Params{
		ID:           v.ID,
		Name:         v.Name,
		Sport:        sport,
		Location:     v.Location,
		PricePerHour: v.PricePerHour,
		Hours:        hours,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.CreatedAt,
	})
}

func (v *VenueBuilder) MustBuild() *venue.Venue {
	built, err := v.BuildDomain()
	if err != nil {
		panic(err)
	}
	return built
}
