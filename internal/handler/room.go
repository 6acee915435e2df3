package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// RoomHandler exposes the room inventory API: admin CRUD plus the
// availability endpoint that the reservation flow's inventory client
// pushes to.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil room repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

type roomReq struct {
	RoomNumber  string `json:"room_number"`
	RoomType    string `json:"room_type"`
	PriceCents  int64  `json:"price_cents"`
	Available   *bool  `json:"available,omitempty"`
	Description string `json:"description"`
	Amenities   string `json:"amenities"`
	MaxGuests   uint32 `json:"max_guests"`
}

// Create handles POST /v1/rooms (admin).
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.RoomNumber == "" || req.RoomType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_number and room_type are required"})
	}
	if req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	room := &model.Room{
		RoomNumber:  req.RoomNumber,
		RoomType:    req.RoomType,
		PriceCents:  req.PriceCents,
		Available:   true,
		Description: req.Description,
		Amenities:   req.Amenities,
		MaxGuests:   req.MaxGuests,
	}
	if req.Available != nil {
		room.Available = *req.Available
	}
	if room.MaxGuests == 0 {
		room.MaxGuests = 2
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		if errors.Is(err, repository.ErrRoomNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": room})
}

// Update handles PUT /v1/rooms/:id (admin).
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	current, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if req.RoomNumber != "" {
		current.RoomNumber = req.RoomNumber
	}
	if req.RoomType != "" {
		current.RoomType = req.RoomType
	}
	if req.PriceCents > 0 {
		current.PriceCents = req.PriceCents
	}
	if req.Available != nil {
		current.Available = *req.Available
	}
	if req.Description != "" {
		current.Description = req.Description
	}
	if req.Amenities != "" {
		current.Amenities = req.Amenities
	}
	if req.MaxGuests > 0 {
		current.MaxGuests = req.MaxGuests
	}
	updated, err := h.Rooms.Update(ctx, id, current)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": updated})
}

// Delete handles DELETE /v1/rooms/:id (admin).
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/rooms/:id.  Public: both guests browsing and the
// inventory client's availability check land here.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": room})
}

// List handles GET /v1/rooms.  The optional ?available=true filter
// narrows to bookable rooms.
func (h *RoomHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		rooms []model.Room
		err   error
	)
	if c.QueryParam("available") == "true" {
		rooms, err = h.Rooms.ListAvailable(ctx)
	} else {
		rooms, err = h.Rooms.ListAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// SetAvailability handles PUT /v1/rooms/:id/availability, the advisory
// update pushed by the reservation flow.
func (h *RoomHandler) SetAvailability(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil || req.Available == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available flag is required"})
	}
	room, err := h.Rooms.SetAvailability(c.Request().Context(), id, *req.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update availability failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": room})
}

func roomID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
