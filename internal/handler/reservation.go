package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/booking"
)

// ReservationHandler exposes the reservation lifecycle over HTTP.  It
// binds requests, hands them to the booking service and translates the
// service's failure taxonomy into status codes:
//
//	validation      -> 400
//	payment decline -> 402
//	foreign reservation, non-admin -> 403
//	not found       -> 404
//	already cancelled, refund decline -> 409
//
// Inventory trouble never shows up here; the booking service swallows
// it.
type ReservationHandler struct {
	Bookings *booking.Service
}

func NewReservationHandler(svc *booking.Service) *ReservationHandler {
	if svc == nil {
		panic("nil booking service passed to NewReservationHandler")
	}
	return &ReservationHandler{Bookings: svc}
}

type createReservationReq struct {
	RoomID          uint64    `json:"room_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          uint32    `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Note            *string   `json:"note,omitempty"`
}

type updateReservationReq struct {
	CheckIn         *time.Time `json:"check_in,omitempty"`
	CheckOut        *time.Time `json:"check_out,omitempty"`
	Guests          *uint32    `json:"guests,omitempty"`
	TotalPriceCents *int64     `json:"total_price_cents,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Note            *string    `json:"note,omitempty"`
}

// Create handles POST /v1/reservations.  The reservation is booked for
// the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Bookings.Create(c.Request().Context(), booking.CreateInput{
		UserID:          userID,
		RoomID:          req.RoomID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		TotalPriceCents: req.TotalPriceCents,
		Note:            req.Note,
	})
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": res})
}

// Get handles GET /v1/reservations/:id.  Customers only see their own
// reservations; admins see any.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Bookings.Get(c.Request().Context(), id, actor)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// List handles GET /v1/reservations (admin surface).
func (h *ReservationHandler) List(c echo.Context) error {
	items, err := h.Bookings.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMine handles GET /v1/my-reservations for the authenticated user.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PATCH /v1/reservations/:id with a partial field edit.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Bookings.Update(c.Request().Context(), id, actor, booking.UpdateInput{
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		TotalPriceCents: req.TotalPriceCents,
		Status:          req.Status,
		Note:            req.Note,
	})
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// Cancel handles DELETE /v1/reservations/:id.  The record is kept with
// status cancelled, not removed.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	actor, err := currentActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Bookings.Cancel(c.Request().Context(), id, actor)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// currentActor bundles the authenticated identity and role for the
// booking service's ownership checks.
func currentActor(c echo.Context) (booking.Actor, error) {
	uid, err := currentUserID(c)
	if err != nil {
		return booking.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	return booking.Actor{UserID: uid, Admin: role == "ADMIN"}, nil
}

func reservationID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

// reservationError maps booking failures to HTTP responses.  The
// wrapped detail (e.g. the payment gateway's message) is passed through
// verbatim.
func reservationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrPaymentDeclined):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRefundDeclined):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
