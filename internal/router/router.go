// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-booking-calendar/internal/config"
	"github.com/iliyamo/event-booking-calendar/internal/handler"
	"github.com/iliyamo/event-booking-calendar/internal/middleware"
)

// Deps carries everything the routes need.  Redis may be nil, in which case
// caching and rate limiting are skipped.
type Deps struct {
	JWTSecret string
	Redis     *redis.Client
	Cache     *middleware.ResponseCache
	RateLimit config.RateLimitConfig

	DB       handler.Pinger
	Auth     *handler.AuthHandler
	Events   *handler.EventHandler
	Profiles *handler.ProfileHandler
}

// Register mounts the public and authenticated API.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))

	// Session endpoints; logout also accepts a bare refresh token.
	a := e.Group("/v1/auth")
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/refresh-access", d.Auth.RefreshAccess)
	a.POST("/logout", d.Auth.Logout)

	v1 := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))
	v1.GET("/me", d.Auth.Me)

	// Reads are cached per user; the insert drops that user's entries.
	// History depends on the current date and is never cached.
	cached := d.Cache.Middleware()
	v1.GET("/events", d.Events.List, cached)
	v1.GET("/events/:id", d.Events.Get, cached)
	v1.GET("/events/day/:date", d.Events.Day, cached)
	v1.GET("/calendar/:year/:month", d.Events.Month, cached)
	v1.GET("/history", d.Events.History)
	v1.GET("/calendar.ics", d.Events.ICS, cached)
	v1.POST("/events", d.Events.Create, middleware.NewTokenBucket(d.RateLimit, d.Redis))

	v1.GET("/profile", d.Profiles.Get)
	v1.PUT("/profile", d.Profiles.Put)
}
