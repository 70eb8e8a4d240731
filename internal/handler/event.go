package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking-calendar/internal/calendar"
	"github.com/iliyamo/event-booking-calendar/internal/export"
	"github.com/iliyamo/event-booking-calendar/internal/middleware"
	"github.com/iliyamo/event-booking-calendar/internal/model"
	"github.com/iliyamo/event-booking-calendar/internal/queue"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
	"github.com/iliyamo/event-booking-calendar/internal/service"
)

// EventHandler serves the caller's bookings.  Every query is scoped to the
// user id that JWTAuth put on the context; a request can never read or
// write another user's rows.
type EventHandler struct {
	Events    EventStore
	Publisher service.BookingPublisher
	Cache     CacheInvalidator
	Loc       *time.Location
	Now       func() time.Time
}

func NewEventHandler(events EventStore, pub service.BookingPublisher, cache CacheInvalidator, loc *time.Location) *EventHandler {
	if pub == nil {
		pub = service.NopPublisher{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &EventHandler{Events: events, Publisher: pub, Cache: cache, Loc: loc, Now: time.Now}
}

// load returns the caller's events in store order.
func (h *EventHandler) load(c echo.Context) ([]model.Event, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Events.ListEvents(ctx, uid)
	if err != nil {
		c.Logger().Errorf("list events for %s: %v", uid, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	events := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.ToEvent(h.Loc)
		if err != nil {
			c.Logger().Errorf("list events for %s: %v", uid, err)
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "malformed event row")
		}
		events = append(events, ev)
	}
	return events, nil
}

// List handles GET /v1/events and returns the stored rows ordered by date.
// The optional query parameters q, hall_type, status, from and to narrow
// the result.
func (h *EventHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f, err := h.filterFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var rows []model.EventRow
	if f.Empty() {
		rows, err = h.Events.ListEvents(ctx, uid)
	} else {
		rows, err = h.Events.SearchEvents(ctx, uid, f)
	}
	if err != nil {
		c.Logger().Errorf("list events for %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *EventHandler) filterFrom(c echo.Context) (repository.EventFilter, error) {
	f := repository.EventFilter{
		Client:   strings.TrimSpace(c.QueryParam("q")),
		HallType: model.HallType(strings.ToLower(strings.TrimSpace(c.QueryParam("hall_type")))),
		Status:   model.Status(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
	}
	if f.HallType != "" && !f.HallType.Valid() {
		return f, fmt.Errorf("invalid hall_type %q", f.HallType)
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("invalid status %q", f.Status)
	}
	for _, p := range []struct {
		name string
		dst  *string
	}{{"from", &f.From}, {"to", &f.To}} {
		v := strings.TrimSpace(c.QueryParam(p.name))
		if v == "" {
			continue
		}
		d, err := model.ParseDate(v, h.Loc)
		if err != nil {
			return f, fmt.Errorf("invalid %s date", p.name)
		}
		*p.dst = model.FormatDate(d)
	}
	return f, nil
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	row, err := h.Events.GetByIDAndUser(ctx, c.Param("id"), uid)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		c.Logger().Errorf("get event %s for %s: %v", c.Param("id"), uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, row)
}

// Create handles POST /v1/events.  The owner comes from the token and the id
// from the store; both are ignored if present in the body.
func (h *EventHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var row model.EventRow
	if err := c.Bind(&row); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	row.ID = ""
	row.UserID = uid
	if row.Status == "" {
		row.Status = model.StatusConfirmed
	}
	if fields := validateRow(&row, h.Loc); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stored, err := h.Events.InsertEvent(ctx, row)
	if err != nil {
		c.Logger().Errorf("insert event for %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if h.Cache != nil {
		if err := h.Cache.InvalidateUser(ctx, uid); err != nil {
			c.Logger().Warnf("cache invalidate for %s: %v", uid, err)
		}
	}
	if stored.Status == model.StatusConfirmed {
		if err := h.Publisher.PublishBookingConfirmed(ctx, queue.NewBookingConfirmed(stored, h.Now())); err != nil {
			c.Logger().Warnf("publish booking %s: %v", stored.ID, err)
		}
	}
	return c.JSON(http.StatusCreated, stored)
}

// validateRow trims the text fields in place and returns the names of the
// invalid ones.
func validateRow(row *model.EventRow, loc *time.Location) []string {
	var bad []string
	for name, p := range map[string]*string{
		"title":       &row.Title,
		"client_name": &row.ClientName,
		"contact_no":  &row.ContactNo,
		"time":        &row.Time,
		"description": &row.Description,
	} {
		*p = strings.TrimSpace(*p)
		if *p == "" {
			bad = append(bad, name)
		}
	}
	if _, err := model.ParseDate(row.Date, loc); err != nil {
		bad = append(bad, "date")
	} else {
		row.Date = row.Date[:len(model.DateLayout)]
	}
	if !row.HallType.Valid() {
		bad = append(bad, "hall_type")
	}
	if !row.Status.Valid() {
		bad = append(bad, "status")
	}
	sort.Strings(bad)
	return bad
}

// Day handles GET /v1/events/day/:date.
func (h *EventHandler) Day(c echo.Context) error {
	day, err := model.ParseDate(c.Param("date"), h.Loc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	events, err := h.load(c)
	if err != nil {
		return err
	}
	on := calendar.EventsOn(events, day)
	return c.JSON(http.StatusOK, echo.Map{
		"date":   model.FormatDate(day),
		"count":  len(on),
		"events": on,
	})
}

// Month handles GET /v1/calendar/:year/:month.
func (h *EventHandler) Month(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 9999 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month"})
	}
	events, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"year":  year,
		"month": month,
		"days":  calendar.MonthCounts(events, year, time.Month(month), h.Loc),
	})
}

// History handles GET /v1/history: bookings before today, newest first, the
// rest, and totals per status.
func (h *EventHandler) History(c echo.Context) error {
	events, err := h.load(c)
	if err != nil {
		return err
	}
	hist := calendar.SplitHistory(events, h.Now().In(h.Loc))
	return c.JSON(http.StatusOK, echo.Map{
		"past":     calendar.SortedByDateDesc(hist.Past),
		"upcoming": hist.Upcoming,
		"total":    len(events),
		"status":   calendar.CountByStatus(events),
	})
}

// ICS handles GET /v1/calendar.ics.
func (h *EventHandler) ICS(c echo.Context) error {
	events, err := h.load(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/calendar; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.ics"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCalendar(c.Response(), events, h.Now())
}
