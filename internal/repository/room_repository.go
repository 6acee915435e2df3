package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomRepo provides CRUD operations on the rooms table.  The booking
// flow itself only reads and flips the availability flag; full CRUD
// exists for the admin surface.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, room_number, room_type, price_cents, available,
       description, amenities, max_guests, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var (
		room        model.Room
		description sql.NullString
		amenities   sql.NullString
	)
	err := row.Scan(
		&room.ID, &room.RoomNumber, &room.RoomType, &room.PriceCents, &room.Available,
		&description, &amenities, &room.MaxGuests, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	room.Description = description.String
	room.Amenities = amenities.String
	return &room, nil
}

// Create inserts a room and populates the generated ID and timestamps
// on the provided record.  ErrRoomNumberExists is returned on a
// duplicate room number.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (room_number, room_type, price_cents, available, description, amenities, max_guests)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		room.RoomNumber, room.RoomType, room.PriceCents, room.Available,
		room.Description, room.Amenities, room.MaxGuests,
	)
	if err != nil {
		// MySQL duplicate key error code
		if strings.Contains(err.Error(), "1062") {
			return ErrRoomNumberExists
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	stored, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return err
	}
	*room = *stored
	return nil
}

// GetByID returns a single room; sql.ErrNoRows when unknown.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, q, id))
}

// ListAll returns every room ordered by room number.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY room_number`
	return r.list(ctx, q)
}

// ListAvailable returns rooms currently flagged available.
func (r *RoomRepo) ListAvailable(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE available = TRUE ORDER BY room_number`
	return r.list(ctx, q)
}

func (r *RoomRepo) list(ctx context.Context, query string, args ...any) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the mutable fields of a room and returns the
// updated row.  sql.ErrNoRows is returned when the room is unknown.
func (r *RoomRepo) Update(ctx context.Context, id uint64, room *model.Room) (*model.Room, error) {
	const q = `UPDATE rooms SET room_number = ?, room_type = ?, price_cents = ?, available = ?,
               description = ?, amenities = ?, max_guests = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		room.RoomNumber, room.RoomType, room.PriceCents, room.Available,
		room.Description, room.Amenities, room.MaxGuests, id,
	); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return nil, ErrRoomNumberExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetAvailability flips the availability flag and returns the updated
// row.  This is the operation the reservation orchestrator pushes
// through the inventory client.
func (r *RoomRepo) SetAvailability(ctx context.Context, id uint64, available bool) (*model.Room, error) {
	const q = `UPDATE rooms SET available = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, available, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a room.  sql.ErrNoRows is returned when the room is
// unknown.  Reservations referencing the room are retained; they hold
// the room id only.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM rooms WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
