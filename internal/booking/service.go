// Package booking drives the reservation lifecycle.  It sequences the
// payment gateway, the reservation store and the room inventory around
// each transition and encodes the failure policy: payment and refund
// outcomes gate the transition, inventory updates are advisory and
// never block or reverse it.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/payment"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// ReservationStore is the persistence contract the service depends on.
// Implemented by repository.ReservationRepo; tests substitute an
// in-memory fake.
type ReservationStore interface {
	Insert(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	Update(ctx context.Context, id uint64, p model.ReservationPatch) (*model.Reservation, error)
}

// PaymentGateway processes charges and refunds.  A failed outcome is a
// business result, not an error; the gateway itself never fails.
type PaymentGateway interface {
	Charge(ctx context.Context, amountCents int64, userID uint64) payment.Outcome
	Refund(ctx context.Context, paymentID string) payment.Outcome
}

// Inventory is the advisory room-availability collaborator.  Errors
// returned from it are swallowed and logged by the service.
type Inventory interface {
	CheckAvailability(ctx context.Context, roomID uint64) (inventory.RoomStatus, error)
	SetAvailability(ctx context.Context, roomID uint64, available bool) error
}

// EventPublisher announces lifecycle transitions on the message broker.
// Publishing is best-effort like the inventory updates.
type EventPublisher interface {
	ReservationConfirmed(ctx context.Context, ev queue.ReservationEvent) error
	ReservationCancelled(ctx context.Context, ev queue.ReservationEvent) error
}

// Service orchestrates reservation create, update and cancel.  All
// collaborators are supplied by the constructor so tests can swap them.
// events may be nil, which disables publishing.
type Service struct {
	store     ReservationStore
	payments  PaymentGateway
	inventory Inventory
	events    EventPublisher
	locks     *reservationLocks
}

// NewService constructs a Service.  store, payments and inventory must
// be non-nil; events is optional.
func NewService(store ReservationStore, payments PaymentGateway, inv Inventory, events EventPublisher) *Service {
	if store == nil || payments == nil || inv == nil {
		panic("nil collaborator passed to booking.NewService")
	}
	return &Service{
		store:     store,
		payments:  payments,
		inventory: inv,
		events:    events,
		locks:     newReservationLocks(),
	}
}

// Actor identifies the caller of a read or transition.  Admins may
// touch any reservation; everyone else only their own.
type Actor struct {
	UserID uint64
	Admin  bool
}

func (a Actor) mayAccess(res *model.Reservation) bool {
	return a.Admin || res.UserID == a.UserID
}

// CreateInput carries the fields of a create request.
type CreateInput struct {
	UserID          uint64
	RoomID          uint64
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          uint32
	TotalPriceCents int64
	Note            *string
}

// validate checks the input shape.  Room capacity is not checked here;
// the room is an external entity and capacity enforcement sits with the
// caller that resolved it.
func (in CreateInput) validate() error {
	if in.UserID == 0 {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if in.RoomID == 0 {
		return fmt.Errorf("%w: room id is required", ErrValidation)
	}
	if !in.CheckOut.After(in.CheckIn) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrValidation)
	}
	if in.Guests == 0 {
		return fmt.Errorf("%w: guest count must be positive", ErrValidation)
	}
	if in.TotalPriceCents < 0 {
		return fmt.Errorf("%w: total price must not be negative", ErrValidation)
	}
	return nil
}

// Create runs the create transition: validate, advisory availability
// check, charge, persist confirmed, advisory availability flip.  When
// the charge fails nothing has been persisted, so no compensation is
// needed.  A room reported unavailable by the advisory check does not
// block creation; inventory consistency is not a gate.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if status, err := s.inventory.CheckAvailability(ctx, in.RoomID); err != nil {
		log.Printf("booking: availability check for room %d failed, proceeding: %v", in.RoomID, err)
	} else if !status.Available {
		log.Printf("booking: room %d reported unavailable, proceeding anyway", in.RoomID)
	}

	outcome := s.payments.Charge(ctx, in.TotalPriceCents, in.UserID)
	if !outcome.Success {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, outcome.Message)
	}

	res := &model.Reservation{
		UserID:          in.UserID,
		RoomID:          in.RoomID,
		CheckIn:         in.CheckIn.UTC(),
		CheckOut:        in.CheckOut.UTC(),
		Guests:          in.Guests,
		TotalPriceCents: in.TotalPriceCents,
		Status:          model.StatusConfirmed,
		PaymentRef:      &outcome.PaymentID,
		Note:            in.Note,
	}
	if err := s.store.Insert(ctx, res); err != nil {
		// The charge went through but the record is lost.  Refund once
		// so the money is not stranded; if that also fails the payment
		// reference in the log is the recovery trail.
		log.Printf("booking: insert after charge %s failed: %v", outcome.PaymentID, err)
		if refund := s.payments.Refund(context.WithoutCancel(ctx), outcome.PaymentID); !refund.Success {
			log.Printf("booking: compensating refund of %s failed: %s", outcome.PaymentID, refund.Message)
		}
		return nil, fmt.Errorf("persist reservation: %w", err)
	}

	s.flipAvailability(ctx, res.RoomID, false)
	s.publishConfirmed(ctx, res)
	return res, nil
}

// Get returns a reservation by id.  Non-admin actors only see their
// own reservations; anything else is ErrForbidden.
func (s *Service) Get(ctx context.Context, id uint64, actor Actor) (*model.Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.mayAccess(res) {
		return nil, ErrForbidden
	}
	return res, nil
}

// List returns all reservations.
func (s *Service) List(ctx context.Context) ([]model.Reservation, error) {
	return s.store.ListAll(ctx)
}

// ListByUser returns the reservations belonging to the given user.
func (s *Service) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.store.ListByUser(ctx, userID)
}

// UpdateInput carries the fields of a partial update.  Nil fields are
// left untouched.  Status is accepted at the transport layer for
// compatibility but rejected here: lifecycle state only changes through
// Cancel.
type UpdateInput struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	Guests          *uint32
	TotalPriceCents *int64
	Status          *string
	Note            *string
}

// Update applies a partial field edit to a reservation.  Per the
// lifecycle rules a cancelled reservation is immutable and direct
// status overwrites are refused.  Beyond that no business-rule
// revalidation is performed on the patched fields, matching the
// reference behavior.
func (s *Service) Update(ctx context.Context, id uint64, actor Actor, in UpdateInput) (*model.Reservation, error) {
	if in.Status != nil {
		return nil, fmt.Errorf("%w: status cannot be set directly, use cancel", ErrValidation)
	}
	if in.Guests != nil && *in.Guests == 0 {
		return nil, fmt.Errorf("%w: guest count must be positive", ErrValidation)
	}
	if in.TotalPriceCents != nil && *in.TotalPriceCents < 0 {
		return nil, fmt.Errorf("%w: total price must not be negative", ErrValidation)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if current.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	patch := model.ReservationPatch{
		CheckIn:         in.CheckIn,
		CheckOut:        in.CheckOut,
		Guests:          in.Guests,
		TotalPriceCents: in.TotalPriceCents,
		Note:            in.Note,
	}
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Cancel runs the cancel transition: lookup, terminal-state guard,
// refund when a payment reference exists, persist cancelled status,
// advisory availability restore.  A declined refund leaves the
// reservation untouched so the caller can retry.
func (s *Service) Cancel(ctx context.Context, id uint64, actor Actor) (*model.Reservation, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	res, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if res.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if res.PaymentRef != nil && *res.PaymentRef != "" {
		outcome := s.payments.Refund(ctx, *res.PaymentRef)
		if !outcome.Success {
			return nil, fmt.Errorf("%w: %s", ErrRefundDeclined, outcome.Message)
		}
	}

	status := model.StatusCancelled
	updated, err := s.store.Update(ctx, id, model.ReservationPatch{Status: &status})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.flipAvailability(ctx, updated.RoomID, true)
	s.publishCancelled(ctx, updated)
	return updated, nil
}

// flipAvailability pushes an availability flag to the inventory
// service.  Failures are logged and swallowed; the reservation outcome
// never depends on this call.  The detached context keeps the push
// alive even when the originating request has already been answered or
// cancelled.
func (s *Service) flipAvailability(ctx context.Context, roomID uint64, available bool) {
	if err := s.inventory.SetAvailability(context.WithoutCancel(ctx), roomID, available); err != nil {
		log.Printf("booking: set availability of room %d to %t failed: %v", roomID, available, err)
	}
}

func (s *Service) publishConfirmed(ctx context.Context, res *model.Reservation) {
	if s.events == nil {
		return
	}
	if err := s.events.ReservationConfirmed(context.WithoutCancel(ctx), queue.NewReservationEvent(res)); err != nil {
		log.Printf("booking: publish confirmed event for reservation %d failed: %v", res.ID, err)
	}
}

func (s *Service) publishCancelled(ctx context.Context, res *model.Reservation) {
	if s.events == nil {
		return
	}
	if err := s.events.ReservationCancelled(context.WithoutCancel(ctx), queue.NewReservationEvent(res)); err != nil {
		log.Printf("booking: publish cancelled event for reservation %d failed: %v", res.ID, err)
	}
}
