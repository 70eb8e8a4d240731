package handler

import (
	"context"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
)

// The handlers depend on these narrow views of the repositories so they can
// be exercised without a database.

type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (string, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type EventStore interface {
	ListEvents(ctx context.Context, userID string) ([]model.EventRow, error)
	SearchEvents(ctx context.Context, userID string, f repository.EventFilter) ([]model.EventRow, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (model.EventRow, error)
	InsertEvent(ctx context.Context, row model.EventRow) (model.EventRow, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) (model.Profile, error)
}

// CacheInvalidator drops cached responses of one user.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second
