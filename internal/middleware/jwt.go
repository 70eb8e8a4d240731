package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking-calendar/internal/utils"
)

// UserIDKey is the echo.Context key under which JWTAuth stores the
// authenticated user's id as a string.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject into the request context.  The provided secret
// must match the one used when issuing tokens.  Every event query downstream
// is scoped by this id, so this middleware is what enforces row-level
// ownership of bookings.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			sub, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(UserIDKey, sub)
			return next(c)
		}
	}
}
