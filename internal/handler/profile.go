package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking-calendar/internal/middleware"
	"github.com/iliyamo/event-booking-calendar/internal/model"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
)

type ProfileHandler struct {
	Profiles ProfileStore
}

func NewProfileHandler(p ProfileStore) *ProfileHandler { return &ProfileHandler{Profiles: p} }

type profileReq struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

// Get handles GET /v1/profile.  A user who never saved a profile gets one
// with null fields.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.Get(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, model.Profile{ID: uid})
	}
	if err != nil {
		c.Logger().Errorf("get profile %s: %v", uid, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, p)
}

// Put handles PUT /v1/profile.  Blank values clear the field.
func (h *ProfileHandler) Put(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.Upsert(ctx, model.Profile{
		ID:       uid,
		FullName: blankToNil(req.FullName),
		Phone:    blankToNil(req.Phone),
	})
	if err != nil {
		c.Logger().Errorf("upsert profile %s: %v", uid, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, p)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
