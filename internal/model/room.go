package model

import "time"

// Room represents a bookable hotel room as stored in the `rooms`
// table.  The reservation core does not own room data; this model
// backs the inventory endpoints that other services (and the
// in-process inventory client) talk to.
//
// Fields:
//
//	ID          – primary key identifier.
//	RoomNumber  – unique human-facing room number (e.g. "204B").
//	RoomType    – free-form category such as "single" or "suite".
//	PriceCents  – nightly price in cents.
//	Available   – whether the room can currently be booked.
//	Description – optional marketing text.
//	Amenities   – comma-separated amenity list.
//	MaxGuests   – maximum occupancy.
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type Room struct {
	ID          uint64    `json:"id"`
	RoomNumber  string    `json:"room_number"`
	RoomType    string    `json:"room_type"`
	PriceCents  int64     `json:"price_cents"`
	Available   bool      `json:"available"`
	Description string    `json:"description,omitempty"`
	Amenities   string    `json:"amenities,omitempty"`
	MaxGuests   uint32    `json:"max_guests"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
