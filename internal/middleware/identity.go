package middleware

// identity.go defines helpers shared across middleware files: the
// identity used when building rate-limit and cache keys.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// identityKey returns a stable identifier for the requester: the JWT
// subject when authenticated (set into the context by JWTAuth), the
// client IP otherwise.
func identityKey(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		return fmt.Sprintf("u:%v", v)
	}
	return "ip:" + c.RealIP()
}
