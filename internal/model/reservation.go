package model

import "time"

// Reservation statuses.  A reservation is created directly in
// StatusConfirmed once the charge succeeds; StatusPending exists for
// completeness but no operation in this service produces it.
// StatusCancelled is terminal: the only permitted operation afterwards
// is a read.  StatusCompleted is reserved for an administrative
// transition outside this service.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is one of the known reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Reservation records a user's booking of a room for a date range
// together with the payment outcome.  All monetary amounts are stored
// in cents.  Timestamps are UTC.
//
// Fields:
//
//	ID              – primary key identifier.
//	UserID          – user who made the reservation.
//	RoomID          – room being reserved.
//	CheckIn         – check-in instant; must precede CheckOut.
//	CheckOut        – check-out instant.
//	Guests          – number of guests, always positive.
//	TotalPriceCents – total price in cents for the stay.
//	Status          – lifecycle state (see constants above).
//	PaymentRef      – payment identifier returned by the gateway.  Set if
//	                  and only if a successful charge was recorded.
//	Note            – optional free-text special request.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	RoomID          uint64    `json:"room_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          uint32    `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Status          string    `json:"status"`
	PaymentRef      *string   `json:"payment_ref,omitempty"`
	Note            *string   `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ReservationPatch describes a partial update to a reservation.  Nil
// fields are left untouched.  Caller-facing updates never set Status or
// PaymentRef; those fields exist so the cancel transition can persist
// its state change through the same repository call.
type ReservationPatch struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	Guests          *uint32
	TotalPriceCents *int64
	Status          *string
	Note            *string
}

// Empty reports whether the patch carries no changes at all.
func (p ReservationPatch) Empty() bool {
	return p.CheckIn == nil && p.CheckOut == nil && p.Guests == nil &&
		p.TotalPriceCents == nil && p.Status == nil && p.Note == nil
}
