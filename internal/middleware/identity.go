package middleware

// identity.go defines helpers shared across middleware files for reading the
// authenticated user that JWTAuth stored in the Echo context.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's id and whether one is present.
func UserID(c echo.Context) (string, bool) {
	s, ok := c.Get(UserIDKey).(string)
	return s, ok && s != ""
}

// userOr returns the authenticated user's id or fallback when the request is
// anonymous.  Used to build rate limit and cache keys.
func userOr(c echo.Context, fallback string) string {
	if id, ok := UserID(c); ok {
		return id
	}
	return fallback
}
