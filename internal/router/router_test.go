package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-calendar/internal/config"
	"github.com/iliyamo/event-booking-calendar/internal/handler"
	"github.com/iliyamo/event-booking-calendar/internal/middleware"
	"github.com/iliyamo/event-booking-calendar/internal/model"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
	"github.com/iliyamo/event-booking-calendar/internal/utils"
)

type memEvents struct{ rows []model.EventRow }

func (m *memEvents) ListEvents(_ context.Context, uid string) ([]model.EventRow, error) {
	out := []model.EventRow{}
	for _, r := range m.rows {
		if r.UserID == uid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memEvents) SearchEvents(ctx context.Context, uid string, _ repository.EventFilter) ([]model.EventRow, error) {
	return m.ListEvents(ctx, uid)
}

func (m *memEvents) GetByIDAndUser(_ context.Context, id, uid string) (model.EventRow, error) {
	for _, r := range m.rows {
		if r.ID == id && r.UserID == uid {
			return r, nil
		}
	}
	return model.EventRow{}, repository.ErrNotFound
}

func (m *memEvents) InsertEvent(_ context.Context, row model.EventRow) (model.EventRow, error) {
	row.ID = "id-" + row.ClientName
	m.rows = append(m.rows, row)
	return row, nil
}

const secret = "router-secret"

func newServer(store *memEvents) *echo.Echo {
	return newServerWithCache(store, middleware.NewResponseCache(config.CacheConfig{}, nil))
}

func newServerWithCache(store *memEvents, cache *middleware.ResponseCache) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1}
	Register(e, Deps{
		JWTSecret: secret,
		Cache:     cache,
		RateLimit: config.RateLimitConfig{},
		Auth:      handler.NewAuthHandler(cfg, nil, nil),
		Events:    handler.NewEventHandler(store, nil, nil, time.UTC),
		Profiles:  handler.NewProfileHandler(nil),
	})
	return e
}

func bearer(t *testing.T, uid string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, uid, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(&memEvents{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestEventsRequireToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(&memEvents{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateThenListIsolatedPerUser(t *testing.T) {
	store := &memEvents{}
	e := newServer(store)
	body := `{"title":"Banquet Hall - Ada","client_name":"Ada","contact_no":"1","date":"2024-03-20","time":"06:00 PM","hall_type":"banquet","description":"x"}`

	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", bearer(t, "u1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	for uid, want := range map[string]int{"u1": 1, "u2": 0} {
		req = httptest.NewRequest(http.MethodGet, "/v1/events/day/2024-03-20", nil)
		req.Header.Set("Authorization", bearer(t, uid))
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"count":%d`, want), uid)
	}
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(&memEvents{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestGetEventOfOtherUserIsNotFound(t *testing.T) {
	store := &memEvents{rows: []model.EventRow{{ID: "e1", UserID: "u1", Date: "2024-03-20"}}}
	e := newServer(store)

	for uid, want := range map[string]int{"u1": http.StatusOK, "u2": http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodGet, "/v1/events/e1", nil)
		req.Header.Set("Authorization", bearer(t, uid))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Code, uid)
	}
}

func TestHistoryBypassesResponseCache(t *testing.T) {
	// Nothing listens on the address, so cached routes fall through as misses.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer rdb.Close()
	cache := middleware.NewResponseCache(config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cal",
	}, rdb)
	store := &memEvents{rows: []model.EventRow{
		{ID: "a", UserID: "u1", Title: "Restaurant - Bo", Date: "2024-03-15", Time: "01:00 PM", HallType: model.HallRestaurant, Status: model.StatusConfirmed},
	}}
	e := newServerWithCache(store, cache)

	for path, want := range map[string]string{"/v1/events": "MISS", "/v1/history": ""} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Header().Get("X-Cache"), path)
	}
}
