// Package seed loads the venue catalog from a JSON file at startup.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type venueRecord struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Sport        string    `json:"sport"`
	Location     string    `json:"location"`
	PricePerHour int64     `json:"price_per_hour"`
	OpenHour     int       `json:"open_hour"`
	CloseHour    int       `json:"close_hour"`
	Active       *bool     `json:"active,omitempty"`
}

// ParseVenues decodes a JSON array of venues. Active defaults to true.
func ParseVenues(r io.Reader, now time.Time) ([]*venue.Venue, error) {
	var records []venueRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode venue seed: %w", err)
	}

	out := make([]*venue.Venue, 0, len(records))
	for i, rec := range records {
		sport, err := venue.NewSport(rec.Sport)
		if err != nil {
			return nil, fmt.Errorf("venue %d: %w", i, err)
		}
		hours, err := venue.NewOperatingHours(rec.OpenHour, rec.CloseHour)
		if err != nil {
			return nil, fmt.Errorf("venue %d: %w", i, err)
		}
		active := true
		if rec.Active != nil {
			active = *rec.Active
		}
		v, err := venue.NewVenue(venue.Params{
			ID:           rec.ID,
			Name:         rec.Name,
			Sport:        sport,
			Location:     rec.Location,
			PricePerHour: rec.PricePerHour,
			Hours:        hours,
			Active:       active,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return nil, fmt.Errorf("venue %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadVenueFile parses path and saves every venue into repo.
func LoadVenueFile(ctx context.Context, path string, repo shared.VenueRepository, now time.Time) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open venue seed: %w", err)
	}
	defer f.Close()

	venues, err := ParseVenues(f, now)
	if err != nil {
		return 0, err
	}
	for _, v := range venues {
		if err := repo.Save(ctx, v); err != nil {
			return 0, fmt.Errorf("failed to save venue %s: %w", v.ID(), err)
		}
	}
	return len(venues), nil
}
