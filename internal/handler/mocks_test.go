package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking-calendar/internal/middleware"
	"github.com/iliyamo/event-booking-calendar/internal/model"
	"github.com/iliyamo/event-booking-calendar/internal/queue"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
)

// --- Mocks ---

type mockEventStore struct {
	listFn   func(ctx context.Context, userID string) ([]model.EventRow, error)
	searchFn func(ctx context.Context, userID string, f repository.EventFilter) ([]model.EventRow, error)
	getFn    func(ctx context.Context, id, userID string) (model.EventRow, error)
	insertFn func(ctx context.Context, row model.EventRow) (model.EventRow, error)
}

func (m *mockEventStore) ListEvents(ctx context.Context, userID string) ([]model.EventRow, error) {
	return m.listFn(ctx, userID)
}
func (m *mockEventStore) SearchEvents(ctx context.Context, userID string, f repository.EventFilter) ([]model.EventRow, error) {
	return m.searchFn(ctx, userID, f)
}
func (m *mockEventStore) GetByIDAndUser(ctx context.Context, id, userID string) (model.EventRow, error) {
	return m.getFn(ctx, id, userID)
}
func (m *mockEventStore) InsertEvent(ctx context.Context, row model.EventRow) (model.EventRow, error) {
	return m.insertFn(ctx, row)
}

type mockPublisher struct {
	published []queue.BookingConfirmedEvent
	err       error
}

func (m *mockPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	m.published = append(m.published, ev)
	return m.err
}

type mockCache struct{ invalidated []string }

func (m *mockCache) InvalidateUser(_ context.Context, userID string) error {
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type mockUserStore struct {
	createFn     func(ctx context.Context, email, password string, cost int) (string, error)
	getByEmailFn func(ctx context.Context, email string) (model.User, error)
	getByIDFn    func(ctx context.Context, id string) (model.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, email, password string, cost int) (string, error) {
	return m.createFn(ctx, email, password, cost)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return m.getByEmailFn(ctx, email)
}
func (m *mockUserStore) GetByID(ctx context.Context, id string) (model.User, error) {
	return m.getByIDFn(ctx, id)
}

// memTokens keeps refresh tokens by hash.
type memTokens struct {
	owners  map[string]string
	revoked map[string]bool
	allFor  []string
}

func newMemTokens() *memTokens {
	return &memTokens{owners: map[string]string{}, revoked: map[string]bool{}}
}

func (m *memTokens) StoreRefresh(_ context.Context, userID, hash string, _ time.Time) error {
	m.owners[hash] = userID
	return nil
}
func (m *memTokens) ValidateRefresh(_ context.Context, hash string) (string, error) {
	uid, ok := m.owners[hash]
	if !ok || m.revoked[hash] {
		return "", io.EOF
	}
	return uid, nil
}
func (m *memTokens) RevokeByHash(_ context.Context, hash string) error {
	m.revoked[hash] = true
	return nil
}
func (m *memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.allFor = append(m.allFor, userID)
	return nil
}

type mockProfiles struct {
	getFn    func(ctx context.Context, userID string) (model.Profile, error)
	upsertFn func(ctx context.Context, p model.Profile) (model.Profile, error)
}

func (m *mockProfiles) Get(ctx context.Context, userID string) (model.Profile, error) {
	return m.getFn(ctx, userID)
}
func (m *mockProfiles) Upsert(ctx context.Context, p model.Profile) (model.Profile, error) {
	return m.upsertFn(ctx, p)
}

// --- Helpers ---

// newCtx builds an echo context for method/target with an optional JSON body
// and, when userID is non-empty, an authenticated user.
func newCtx(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.UserIDKey, userID)
	}
	return c, rec
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusOK
}
