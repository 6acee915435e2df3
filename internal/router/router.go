// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
// Currently only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the identity endpoints.  Register, login,
// refresh and logout live under /v1/auth without a session; /v1/me
// requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterRooms registers the room inventory API.  Browsing and the
// single-room read are public (and response-cached when Redis is
// around); mutations require the ADMIN role.  The availability
// endpoint is left open because the reservation flow's inventory
// client calls it service-to-service; it carries no credentials, which
// matches the advisory nature of the update.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	limitCfg := config.LoadRateLimitConfig()

	public := e.Group("/v1",
		middleware.NewTokenBucket(limitCfg, rdb),
		middleware.ResponseCache(cacheCfg, rdb),
	)
	public.GET("/rooms", h.List)
	public.GET("/rooms/:id", h.Get)

	e.PUT("/v1/rooms/:id/availability", h.SetAvailability)

	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.POST("/rooms", h.Create)
	admin.PUT("/rooms/:id", h.Update)
	admin.DELETE("/rooms/:id", h.Delete)
}
