package queries

import (
	"context"
	"slices"
	"strings"

	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrVenueNotFound = errs.Mark(errs.New("venue not found"), errs.ErrVenueNotFound)

type VenueReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*venue.Venue, error)
	List(ctx context.Context) ([]*venue.Venue, error)
}

type VenueQueries interface {
	// GetVenue hides inactive venues behind VenueNotFound.
	GetVenue(ctx context.Context, id uuid.UUID) (*VenueView, error)
	ListVenues(ctx context.Context, sport *venue.Sport) ([]*VenueView, error)
}

type venueQueriesImpl struct {
	store VenueReadStore
}

func NewVenueQueries(store VenueReadStore) VenueQueries {
	return &venueQueriesImpl{store: store}
}

func (q *venueQueriesImpl) GetVenue(ctx context.Context, id uuid.UUID) (*VenueView, error) {
	v, err := activeVenue(ctx, q.store, id)
	if err != nil {
		return nil, err
	}
	return NewVenueView(v), nil
}

func (q *venueQueriesImpl) ListVenues(ctx context.Context, sport *venue.Sport) ([]*VenueView, error) {
	all, err := q.store.List(ctx)
	if err != nil {
		return nil, shared.StoreError(err, ErrVenueNotFound)
	}

	out := make([]*VenueView, 0, len(all))
	for _, v := range all {
		if !v.IsBookable() {
			continue
		}
		if sport != nil && v.Sport() != *sport {
			continue
		}
		out = append(out, NewVenueView(v))
	}
	slices.SortFunc(out, func(a, b *VenueView) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func activeVenue(ctx context.Context, store VenueReadStore, id uuid.UUID) (*venue.Venue, error) {
	v, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreError(err, ErrVenueNotFound)
	}
	if !v.IsBookable() {
		return nil, errs.Wrapf(ErrVenueNotFound, "venue %s is inactive", id)
	}
	return v, nil
}
