// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Queue names for reservation lifecycle events.
const (
	ConfirmedQueue = "reservation.confirmed"
	CancelledQueue = "reservation.cancelled"
)

// ReservationEvent is published when a reservation is confirmed or
// cancelled.  It carries enough information for downstream consumers to
// log, notify or feed analytics without querying the primary database.
type ReservationEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	UserID          uint64 `json:"user_id"`
	RoomID          uint64 `json:"room_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Guests          uint32 `json:"guests"`
	TotalPriceCents int64  `json:"total_price_cents"`
	Status          string `json:"status"`
	PaymentRef      string `json:"payment_ref,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}

// NewReservationEvent builds an event snapshot from a reservation.
func NewReservationEvent(res *model.Reservation) ReservationEvent {
	ev := ReservationEvent{
		ReservationID:   res.ID,
		UserID:          res.UserID,
		RoomID:          res.RoomID,
		CheckIn:         res.CheckIn.UTC().Format(time.RFC3339),
		CheckOut:        res.CheckOut.UTC().Format(time.RFC3339),
		Guests:          res.Guests,
		TotalPriceCents: res.TotalPriceCents,
		Status:          res.Status,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if res.PaymentRef != nil {
		ev.PaymentRef = *res.PaymentRef
	}
	return ev
}
