package calendar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

type mockCreator struct {
	createFn func(ctx context.Context, in BookingInput) (model.Event, error)
	calls    int
}

func (m *mockCreator) Create(ctx context.Context, in BookingInput) (model.Event, error) {
	m.calls++
	return m.createFn(ctx, in)
}

func fillForm(f *Form) {
	f.Name = "Sam"
	f.ContactNo = "555-0101"
	f.SelectTime("07:00 PM")
	f.HallType = model.HallRestaurant
	f.Description = "Anniversary dinner"
}

func TestForm_Validate(t *testing.T) {
	f := NewForm(day(2025, 6, 15))
	err := f.Validate()

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"name", "contact_no", "time", "hall_type", "description"}, vErr.Fields)

	fillForm(&f)
	assert.NoError(t, f.Validate())

	f.HallType = "ballroom"
	assert.Error(t, f.Validate())
}

func TestForm_CustomTime(t *testing.T) {
	f := NewForm(day(2025, 6, 15))
	fillForm(&f)

	f.SelectTime(CustomTimeSlot)
	assert.True(t, f.CustomTime())
	assert.Equal(t, "", f.Time)
	assert.Error(t, f.Validate())

	f.Time = "around noon"
	assert.NoError(t, f.Validate())

	f.SelectTime("09:00 AM")
	assert.False(t, f.CustomTime())
	assert.Equal(t, "09:00 AM", f.Time)
}

func TestSubmit_SuccessResetsAndCloses(t *testing.T) {
	creator := &mockCreator{createFn: func(ctx context.Context, in BookingInput) (model.Event, error) {
		assert.Equal(t, "Sam", in.Name)
		assert.Equal(t, model.HallRestaurant, in.HallType)
		assert.Equal(t, day(2025, 6, 15), in.Date)
		return model.Event{ID: "n1", Title: model.BookingTitle(in.HallType, in.Name), Status: model.StatusConfirmed}, nil
	}}
	s := NewSubmitter(creator)
	s.Open(day(2025, 6, 15))
	s.Edit(fillForm)

	ev, err := s.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Restaurant - Sam", ev.Title)
	assert.False(t, s.IsOpen())
	assert.Equal(t, Idle, s.State())
	f := s.Form()
	assert.Empty(t, f.Name)
	assert.Empty(t, f.Time)
	assert.Empty(t, f.HallType)
	assert.NoError(t, s.Err())
}

func TestSubmit_FailureKeepsFormOpen(t *testing.T) {
	creator := &mockCreator{createFn: func(ctx context.Context, in BookingInput) (model.Event, error) {
		return model.Event{}, &StoreWriteError{Err: errors.New("insert rejected")}
	}}
	s := NewSubmitter(creator)
	s.Open(day(2025, 6, 15))
	s.Edit(fillForm)

	_, err := s.Submit(context.Background())

	assert.Error(t, err)
	assert.True(t, s.IsOpen())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, "Sam", s.Form().Name)
	assert.Equal(t, err, s.Err())

	// user retries by submitting again
	creator.createFn = func(ctx context.Context, in BookingInput) (model.Event, error) {
		return model.Event{ID: "n2"}, nil
	}
	_, err = s.Submit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, creator.calls)
}

func TestSubmit_RejectsRepeatWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	creator := &mockCreator{createFn: func(ctx context.Context, in BookingInput) (model.Event, error) {
		close(entered)
		<-release
		return model.Event{ID: "n1"}, nil
	}}
	s := NewSubmitter(creator)
	s.Open(day(2025, 6, 15))
	s.Edit(fillForm)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-entered

	assert.Equal(t, Submitting, s.State())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.False(t, s.Close(), "cancel is disabled while submitting")

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, creator.calls)
}

func TestSubmit_InvalidFormDoesNotCallCreator(t *testing.T) {
	creator := &mockCreator{}
	s := NewSubmitter(creator)
	s.Open(day(2025, 6, 15))

	_, err := s.Submit(context.Background())

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, creator.calls)
	assert.True(t, s.IsOpen())
}

func TestSubmit_ClosedForm(t *testing.T) {
	s := NewSubmitter(&mockCreator{})

	_, err := s.Submit(context.Background())

	assert.ErrorIs(t, err, ErrFormClosed)
}

func TestSubmit_WithSync(t *testing.T) {
	store := &mockStore{insertFn: echoInsert("r1")}
	syncer := NewSync(store, staticAuth{"u1"})
	s := NewSubmitter(syncer)
	s.Open(day(2025, 6, 15))
	s.Edit(fillForm)

	ev, err := s.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Restaurant - Sam", ev.Title)
	assert.Equal(t, model.StatusConfirmed, ev.Status)
	assert.Len(t, syncer.Events(), 1)
}
