package postgres

import (
	"context"
	"log/slog"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/infra"
	"rogu-booking/internal/pkg/pgconv"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type VenueRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewVenueRepository(db DBTX, logger *slog.Logger) *VenueRepository {
	return &VenueRepository{db: db, logger: logger}
}

const venueColumns = `id, name, sport, location, price_per_hour, open_hour, close_hour, active, created_at, updated_at`

func (r *VenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*venue.Venue, error) {
	v, err := scanVenue(r.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "venue not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find venue by ID", err)
	}
	return v, nil
}

func (r *VenueRepository) List(ctx context.Context) ([]*venue.Venue, error) {
	rows, err := r.db.Query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY id`)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list venues", err)
	}
	defer rows.Close()

	var out []*venue.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan venue", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list venues", err)
	}
	return out, nil
}

func (r *VenueRepository) Save(ctx context.Context, v *venue.Venue) error {
	hours := v.OperatingHours()
	_, err := r.db.Exec(ctx, `
		INSERT INTO venues (`+venueColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, sport = EXCLUDED.sport, location = EXCLUDED.location,
			price_per_hour = EXCLUDED.price_per_hour, open_hour = EXCLUDED.open_hour,
			close_hour = EXCLUDED.close_hour, active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`,
		v.ID(), v.Name(), v.Sport().String(), v.Location(), v.PricePerHour(),
		hours.Open(), hours.Close(), v.Active(),
		pgconv.TimeToPgtype(v.CreatedAt()), pgconv.TimeToPgtype(v.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to save venue", err)
	}
	return nil
}

func scanVenue(row pgx.Row) (*venue.Venue, error) {
	var (
		p         venue.Params
		sport     string
		openHour  int16
		closeHour int16
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &p.Name, &sport, &p.Location, &p.PricePerHour,
		&openHour, &closeHour, &p.Active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	hours, err := venue.NewOperatingHours(int(openHour), int(closeHour))
	if err != nil {
		return nil, err
	}
	p.Sport = venue.Sport(sport)
	p.Hours = hours
	p.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	p.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return venue.NewVenue(p)
}

type CheckInRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewCheckInRepository(db DBTX, logger *slog.Logger) *CheckInRepository {
	return &CheckInRepository{db: db, logger: logger}
}

func (r *CheckInRepository) Append(ctx context.Context, c shared.CheckIn) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO check_ins (id, reservation_id, controller_id, checked_in_at)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.ReservationID, c.ControllerID, pgconv.TimeToPgtype(c.CheckedInAt))
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to record check-in", err)
	}
	return nil
}

func (r *CheckInRepository) CountByReservation(ctx context.Context, reservationID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE reservation_id = $1`, reservationID).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to count check-ins", err)
	}
	return count, nil
}

type IdempotencyRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewIdempotencyRepository(db DBTX, logger *slog.Logger) *IdempotencyRepository {
	return &IdempotencyRepository{db: db, logger: logger}
}

func (r *IdempotencyRepository) Find(ctx context.Context, clientID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	rec := shared.IdempotencyRecord{ClientID: clientID, Key: key}
	var createdAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT request_hash, reservation_id, created_at
		FROM idempotency_keys WHERE client_id = $1 AND key = $2`,
		clientID, key).Scan(&rec.RequestHash, &rec.ReservationID, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "idempotency key not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to get idempotency key", err)
	}
	rec.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &rec, nil
}

func (r *IdempotencyRepository) Save(ctx context.Context, rec shared.IdempotencyRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO idempotency_keys (client_id, key, request_hash, reservation_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ClientID, rec.Key, rec.RequestHash, rec.ReservationID, pgconv.TimeToPgtype(rec.CreatedAt))
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "idempotency key already used", err)
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to save idempotency key", err)
	}
	return nil
}

func dateToPgtype(d calendar.Date) pgtype.Date {
	return pgtype.Date{Time: d.UTCMidnight(), Valid: true}
}

func dateFromPgtype(pd pgtype.Date) calendar.Date {
	if !pd.Valid {
		return calendar.Date{}
	}
	return calendar.DateOf(pd.Time, time.UTC)
}

func hoursToPgtype(hours []calendar.Hour) []int16 {
	out := make([]int16, len(hours))
	for i, h := range hours {
		out[i] = int16(h.Int()) // #nosec G115 -- hours are 0..23
	}
	return out
}

func hoursFromPgtype(vals []int16) []calendar.Hour {
	out := make([]calendar.Hour, len(vals))
	for i, v := range vals {
		out[i] = calendar.Hour(v)
	}
	return out
}
