package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationRepo provides CRUD operations on the reservations table.
// Rows are never deleted; the lifecycle is tracked through the status
// column.  All timestamps are stored in UTC.  Every operation is atomic
// at single-row granularity, which is all the booking flow requires.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, room_id, check_in, check_out, guests,
       total_price_cents, status, payment_ref, note, created_at, updated_at`

// scanReservation reads one row in reservationColumns order.
func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res        model.Reservation
		paymentRef sql.NullString
		note       sql.NullString
	)
	err := row.Scan(
		&res.ID, &res.UserID, &res.RoomID, &res.CheckIn, &res.CheckOut, &res.Guests,
		&res.TotalPriceCents, &res.Status, &paymentRef, &note, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentRef.Valid {
		v := paymentRef.String
		res.PaymentRef = &v
	}
	if note.Valid {
		v := note.String
		res.Note = &v
	}
	return &res, nil
}

// Insert persists a new reservation and populates the generated ID and
// timestamps on the provided record.  Status must be one of the model
// status constants.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
               (user_id, room_id, check_in, check_out, guests, total_price_cents, status, payment_ref, note)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var paymentRef, note any
	if res.PaymentRef != nil {
		paymentRef = *res.PaymentRef
	}
	if res.Note != nil {
		note = *res.Note
	}
	result, err := r.db.ExecContext(ctx, q,
		res.UserID, res.RoomID, res.CheckIn.UTC(), res.CheckOut.UTC(), res.Guests,
		res.TotalPriceCents, res.Status, paymentRef, note,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row so defaults and timestamps are populated.
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// GetByID returns a single reservation.  sql.ErrNoRows is returned when
// the identifier is unknown.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// ListByUser returns all reservations created by the given user,
// newest first.  When none exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListAll returns every reservation, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial patch to a reservation and returns the
// updated row.  Nil patch fields are left untouched.  sql.ErrNoRows is
// returned when the identifier is unknown.  An empty patch degrades to
// a plain read.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, p model.ReservationPatch) (*model.Reservation, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	if p.Status != nil && !model.ValidStatus(*p.Status) {
		return nil, fmt.Errorf("unknown reservation status %q", *p.Status)
	}
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if p.CheckIn != nil {
		sets = append(sets, "check_in = ?")
		args = append(args, p.CheckIn.UTC())
	}
	if p.CheckOut != nil {
		sets = append(sets, "check_out = ?")
		args = append(args, p.CheckOut.UTC())
	}
	if p.Guests != nil {
		sets = append(sets, "guests = ?")
		args = append(args, *p.Guests)
	}
	if p.TotalPriceCents != nil {
		sets = append(sets, "total_price_cents = ?")
		args = append(args, *p.TotalPriceCents)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if p.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *p.Note)
	}
	query := "UPDATE reservations SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Either the row does not exist or the patch matched the stored
		// values.  Distinguish with a read.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}
