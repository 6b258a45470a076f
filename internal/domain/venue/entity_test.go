//go:build unit

package venue_test

import (
	"strings"
	"testing"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/venue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams(t *testing.T) venue.Params {
	t.Helper()
	hours, err := venue.NewOperatingHours(8, 22)
	require.NoError(t, err)
	return venue.Params{
		Name:         "Cancha Central",
		Sport:        venue.SportSoccer,
		Location:     "Av. Principal 123",
		PricePerHour: 15000,
		Hours:        hours,
		Active:       true,
	}
}

func TestNewVenue(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*venue.Params)
		errIs  error
	}{
		{name: "valid venue", mutate: func(*venue.Params) {}},
		{name: "blank name", mutate: func(p *venue.Params) { p.Name = "   " }, errIs: venue.ErrEmptyVenueName},
		{name: "name too long", mutate: func(p *venue.Params) { p.Name = strings.Repeat("a", venue.MaxVenueNameLength+1) }, errIs: venue.ErrVenueNameTooLong},
		{name: "unknown sport", mutate: func(p *venue.Params) { p.Sport = "cricket" }, errIs: venue.ErrInvalidSport},
		{name: "zero price", mutate: func(p *venue.Params) { p.PricePerHour = 0 }, errIs: venue.ErrNonPositivePrice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(t)
			tc.mutate(&p)
			v, err := venue.NewVenue(p)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, "", v.ID().String())
			assert.True(t, v.IsBookable())
		})
	}
}

func TestOperatingHours(t *testing.T) {
	t.Run("enumerates half-open window", func(t *testing.T) {
		hours, err := venue.NewOperatingHours(8, 11)
		require.NoError(t, err)
		assert.Equal(t, []calendar.Hour{8, 9, 10}, hours.Hours())
		assert.True(t, hours.Contains(8))
		assert.False(t, hours.Contains(11))
	})

	t.Run("zero-length window is empty", func(t *testing.T) {
		hours, err := venue.NewOperatingHours(10, 10)
		require.NoError(t, err)
		assert.Empty(t, hours.Hours())
	})

	t.Run("rejects inverted or out of range windows", func(t *testing.T) {
		for _, tc := range [][2]int{{12, 8}, {-1, 5}, {0, 25}} {
			_, err := venue.NewOperatingHours(tc[0], tc[1])
			assert.ErrorIs(t, err, venue.ErrInvalidOperatingHrs)
		}
	})
}

func TestVenueWithPrice(t *testing.T) {
	v, err := venue.NewVenue(validParams(t))
	require.NoError(t, err)

	updated, err := v.WithPrice(20000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(20000), updated.PricePerHour())
	assert.Equal(t, int64(15000), v.PricePerHour(), "original is untouched")

	_, err = v.WithPrice(-1, time.Now())
	assert.ErrorIs(t, err, venue.ErrNonPositivePrice)
}
