package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// RegisterReservations registers the reservation lifecycle endpoints.
// Customers create, edit and cancel their own reservations; the full
// listing is admin-only.  Cancellation is a DELETE but keeps the
// record (status flips to cancelled).
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "CUSTOMER"),
	)
	g.POST("/reservations", h.Create)
	g.GET("/reservations/:id", h.Get)
	g.PATCH("/reservations/:id", h.Update)
	g.DELETE("/reservations/:id", h.Cancel)
	g.GET("/my-reservations", h.ListMine)

	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.GET("/reservations", h.List)
}
