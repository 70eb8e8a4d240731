package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-calendar/internal/model"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
)

func TestProfileGet_NotSavedYet(t *testing.T) {
	h := NewProfileHandler(&mockProfiles{getFn: func(context.Context, string) (model.Profile, error) {
		return model.Profile{}, repository.ErrNotFound
	}})
	c, rec := newCtx(http.MethodGet, "/v1/profile", "", "u1")

	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u1","full_name":null,"phone":null,"updated_at":"0001-01-01T00:00:00Z"}`, rec.Body.String())
}

func TestProfilePut_TrimsAndClears(t *testing.T) {
	var saved model.Profile
	h := NewProfileHandler(&mockProfiles{upsertFn: func(_ context.Context, p model.Profile) (model.Profile, error) {
		saved = p
		p.UpdatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		return p, nil
	}})
	c, rec := newCtx(http.MethodPut, "/v1/profile", `{"full_name":"  Ada Lovelace ","phone":"  "}`, "u1")

	require.NoError(t, h.Put(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", saved.ID)
	require.NotNil(t, saved.FullName)
	assert.Equal(t, "Ada Lovelace", *saved.FullName)
	assert.Nil(t, saved.Phone)
}

func TestProfilePut_Unauthenticated(t *testing.T) {
	h := NewProfileHandler(&mockProfiles{})
	c, _ := newCtx(http.MethodPut, "/v1/profile", `{}`, "")

	err := h.Put(c)

	assert.Equal(t, http.StatusUnauthorized, httpCode(err))
}
