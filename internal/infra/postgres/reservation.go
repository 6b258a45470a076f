package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/infra"
	"rogu-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `id, venue_id, client_id, date, time_slots, total_price, status,
	participants, payment_method, access_token, hold_expires_at, cancelled_by,
	cancel_reason, created_at, updated_at, confirmed_at, cancelled_at, completed_at`

// ReservationRepository serves both the partition-scoped writes of a unit of
// work and the lock-free reads of the query side, depending on db.
type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{db: db, logger: logger}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *reservation.Reservation) error {
	snap := res.Snapshot()
	participants, err := json.Marshal(snap.Participants)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode participants", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		snap.ID, snap.VenueID, snap.ClientID, dateToPgtype(snap.Date), hoursToPgtype(snap.TimeSlots),
		snap.TotalPrice, string(snap.Status), participants, string(snap.PaymentMethod),
		pgconv.NullableString(snap.AccessToken), pgconv.TimePtrToPgtype(snap.HoldExpiresAt),
		pgconv.UUIDPtrToPgtype(snap.CancelledBy), pgconv.NullableString(string(snap.CancelReason)),
		pgconv.TimeToPgtype(snap.CreatedAt), pgconv.TimeToPgtype(snap.UpdatedAt),
		pgconv.TimePtrToPgtype(snap.ConfirmedAt), pgconv.TimePtrToPgtype(snap.CancelledAt),
		pgconv.TimePtrToPgtype(snap.CompletedAt),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "reservation or access token already exists", err)
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert reservation", err)
	}
	return nil
}

// Update persists the mutable lifecycle columns. Slots, price and
// participants are fixed at creation.
func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	snap := res.Snapshot()
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations SET
			status = $2, access_token = $3, hold_expires_at = $4, cancelled_by = $5,
			cancel_reason = $6, updated_at = $7, confirmed_at = $8, cancelled_at = $9,
			completed_at = $10
		WHERE id = $1`,
		snap.ID, string(snap.Status), pgconv.NullableString(snap.AccessToken),
		pgconv.TimePtrToPgtype(snap.HoldExpiresAt), pgconv.UUIDPtrToPgtype(snap.CancelledBy),
		pgconv.NullableString(string(snap.CancelReason)), pgconv.TimeToPgtype(snap.UpdatedAt),
		pgconv.TimePtrToPgtype(snap.ConfirmedAt), pgconv.TimePtrToPgtype(snap.CancelledAt),
		pgconv.TimePtrToPgtype(snap.CompletedAt),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "access token already exists", err)
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("reservation not found")
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.one(ctx, "reservation not found",
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *ReservationRepository) FindByToken(ctx context.Context, token string) (*reservation.Reservation, error) {
	return r.one(ctx, "access token not found",
		`SELECT `+reservationColumns+` FROM reservations WHERE access_token = $1`, token)
}

func (r *ReservationRepository) ListByPartition(ctx context.Context, key reservation.PartitionKey) ([]*reservation.Reservation, error) {
	return r.many(ctx, "failed to list reservations by partition",
		`SELECT `+reservationColumns+` FROM reservations WHERE venue_id = $1 AND date = $2`,
		key.VenueID, dateToPgtype(key.Date))
}

func (r *ReservationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.many(ctx, "failed to list reservations by client",
		`SELECT `+reservationColumns+` FROM reservations WHERE client_id = $1`, clientID)
}

func (r *ReservationRepository) ListByVenue(ctx context.Context, venueID uuid.UUID, date *calendar.Date) ([]*reservation.Reservation, error) {
	if date != nil {
		return r.ListByPartition(ctx, reservation.PartitionKey{VenueID: venueID, Date: *date})
	}
	return r.many(ctx, "failed to list reservations by venue",
		`SELECT `+reservationColumns+` FROM reservations WHERE venue_id = $1`, venueID)
}

func (r *ReservationRepository) ListConfirmedBefore(ctx context.Context, date calendar.Date) ([]*reservation.Reservation, error) {
	return r.many(ctx, "failed to list elapsed reservations",
		`SELECT `+reservationColumns+` FROM reservations WHERE status = $1 AND date < $2`,
		string(reservation.StatusConfirmed), dateToPgtype(date))
}

func (r *ReservationRepository) ListPendingHoldsExpiredAt(ctx context.Context, at time.Time) ([]*reservation.Reservation, error) {
	return r.many(ctx, "failed to list expired holds",
		`SELECT `+reservationColumns+` FROM reservations WHERE status = $1 AND hold_expires_at <= $2`,
		string(reservation.StatusPending), pgconv.TimeToPgtype(at))
}

func (r *ReservationRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE access_token = $1)`, token).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check access token", err)
	}
	return exists, nil
}

func (r *ReservationRepository) CountCheckIns(ctx context.Context, reservationID uuid.UUID) (int, error) {
	return NewCheckInRepository(r.db, r.logger).CountByReservation(ctx, reservationID)
}

func (r *ReservationRepository) one(ctx context.Context, notFound, query string, args ...any) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, notFound, err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to read reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) many(ctx context.Context, failure, query string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, failure, err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, failure, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, failure, err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		snap          reservation.Snapshot
		date          pgtype.Date
		slots         []int16
		status        string
		participants  []byte
		paymentMethod string
		accessToken   pgtype.Text
		holdExpiresAt pgtype.Timestamptz
		cancelledBy   pgtype.UUID
		cancelReason  pgtype.Text
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
		confirmedAt   pgtype.Timestamptz
		cancelledAt   pgtype.Timestamptz
		completedAt   pgtype.Timestamptz
	)
	if err := row.Scan(
		&snap.ID, &snap.VenueID, &snap.ClientID, &date, &slots, &snap.TotalPrice, &status,
		&participants, &paymentMethod, &accessToken, &holdExpiresAt, &cancelledBy,
		&cancelReason, &createdAt, &updatedAt, &confirmedAt, &cancelledAt, &completedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &snap.Participants); err != nil {
		return nil, err
	}

	snap.Date = dateFromPgtype(date)
	snap.TimeSlots = hoursFromPgtype(slots)
	snap.Status = reservation.Status(status)
	snap.PaymentMethod = reservation.PaymentMethod(paymentMethod)
	snap.AccessToken = pgconv.StringFromPgtype(accessToken)
	snap.HoldExpiresAt = pgconv.TimePtrFromPgtype(holdExpiresAt)
	snap.CancelledBy = pgconv.UUIDPtrFromPgtype(cancelledBy)
	snap.CancelReason = reservation.CancelReason(pgconv.StringFromPgtype(cancelReason))
	snap.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	snap.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	snap.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	snap.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)
	snap.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	return reservation.Reconstruct(snap), nil
}
