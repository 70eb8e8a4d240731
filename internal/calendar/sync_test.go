package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// --- Mock Store / Authenticator ---

type mockStore struct {
	mu       sync.Mutex
	listFn   func(ctx context.Context, userID string) ([]model.EventRow, error)
	insertFn func(ctx context.Context, row model.EventRow) (model.EventRow, error)
	lists    int
	inserts  []model.EventRow
}

func (m *mockStore) ListEvents(ctx context.Context, userID string) ([]model.EventRow, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	return m.listFn(ctx, userID)
}

func (m *mockStore) InsertEvent(ctx context.Context, row model.EventRow) (model.EventRow, error) {
	m.mu.Lock()
	m.inserts = append(m.inserts, row)
	m.mu.Unlock()
	return m.insertFn(ctx, row)
}

type staticAuth struct{ userID string }

func (a staticAuth) CurrentUser() (string, bool) { return a.userID, a.userID != "" }

type recordingNotifier struct{ notices []Notice }

func (r *recordingNotifier) Notify(n Notice) { r.notices = append(r.notices, n) }

// --- Helpers ---

func storedRows() []model.EventRow {
	return []model.EventRow{
		{ID: "e1", UserID: "u1", Title: "Banquet Hall - A", ClientName: "A", ContactNo: "111",
			Date: "2025-06-15", Time: "10:00 AM", HallType: model.HallBanquet, Description: "wedding", Status: model.StatusConfirmed},
		{ID: "e2", UserID: "u1", Title: "Kitty Party Hall - B", ClientName: "B", ContactNo: "222",
			Date: "2025-06-20", Time: "06:00 PM", HallType: model.HallKitty, Description: "party", Status: model.StatusPending},
	}
}

func echoInsert(id string) func(ctx context.Context, row model.EventRow) (model.EventRow, error) {
	return func(ctx context.Context, row model.EventRow) (model.EventRow, error) {
		row.ID = id
		return row, nil
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- Tests ---

func TestLoad_ReplacesListInDateOrder(t *testing.T) {
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		assert.Equal(t, "u1", userID)
		return storedRows(), nil
	}}
	s := NewSync(store, staticAuth{"u1"}, WithLocation(time.UTC))
	assert.True(t, s.Loading())

	require.NoError(t, s.Load(context.Background(), "u1"))

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "A", events[0].ClientName)
	assert.Equal(t, model.HallBanquet, events[0].HallType)
	assert.Equal(t, day(2025, 6, 15), events[0].Date)
	assert.Equal(t, "e2", events[1].ID)
	assert.False(t, s.Loading())
	assert.Equal(t, "u1", s.UserID())
}

func TestLoad_SignedOutClearsWithoutStoreCall(t *testing.T) {
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		return storedRows(), nil
	}}
	s := NewSync(store, staticAuth{}, WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))
	require.Len(t, s.Events(), 2)

	require.NoError(t, s.Load(context.Background(), ""))

	assert.Empty(t, s.Events())
	assert.False(t, s.Loading())
	assert.Equal(t, 1, store.lists)
}

func TestLoad_SignedOutFromStartMakesNoCalls(t *testing.T) {
	store := &mockStore{}
	s := NewSync(store, staticAuth{})

	require.NoError(t, s.Load(context.Background(), ""))

	assert.Empty(t, s.Events())
	assert.False(t, s.Loading())
	assert.Equal(t, 0, store.lists)
}

func TestLoad_FailureKeepsPriorListAndNotifies(t *testing.T) {
	fail := false
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return storedRows(), nil
	}}
	notes := &recordingNotifier{}
	s := NewSync(store, staticAuth{"u1"}, WithNotifier(notes), WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))

	fail = true
	err := s.Load(context.Background(), "u1")

	var readErr *StoreReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "u1", readErr.UserID)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, s.Events(), 2)
	assert.False(t, s.Loading())
	require.Len(t, notes.notices, 1)
	assert.True(t, notes.notices[0].Destructive)
	assert.Equal(t, "Failed to load events from database", notes.notices[0].Description)
}

func TestLoad_UserChangeReplacesWholeList(t *testing.T) {
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		if userID == "u2" {
			return []model.EventRow{{ID: "x9", UserID: "u2", Date: "2025-07-01", HallType: model.HallRestaurant}}, nil
		}
		return storedRows(), nil
	}}
	s := NewSync(store, staticAuth{}, WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))

	require.NoError(t, s.HandleSession(context.Background(), "u2"))

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "x9", events[0].ID)
}

func TestLoad_FailedUserChangeDoesNotKeepPreviousUsersEvents(t *testing.T) {
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		if userID == "u2" {
			return nil, errors.New("timeout")
		}
		return storedRows(), nil
	}}
	s := NewSync(store, staticAuth{}, WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))

	err := s.Load(context.Background(), "u2")

	assert.Error(t, err)
	assert.Empty(t, s.Events())
}

func TestLoad_StaleResultIsDroppedAfterSignOut(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		close(started)
		<-release
		return storedRows(), nil
	}}
	s := NewSync(store, staticAuth{}, WithLocation(time.UTC))

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), "u1") }()
	<-started
	require.NoError(t, s.Load(context.Background(), ""))
	close(release)

	assert.NoError(t, <-done)
	assert.Empty(t, s.Events())
	assert.Equal(t, "", s.UserID())
}

func TestLoadAndCreate_OverlapApplyInCompletionOrder(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	store := &mockStore{
		listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				return storedRows(), nil
			}
			close(started)
			<-release
			return storedRows()[:1], nil
		},
		insertFn: echoInsert("new-1"),
	}
	s := NewSync(store, staticAuth{"u1"}, WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))

	done := make(chan error, 1)
	go func() { done <- s.Refetch(context.Background()) }()
	<-started

	_, err := s.Create(context.Background(), BookingInput{
		Name: "C", ContactNo: "333", Date: day(2025, 7, 1), Time: "11:00 AM",
		HallType: model.HallRestaurant, Description: "lunch",
	})
	require.NoError(t, err)
	assert.Len(t, s.Events(), 3)

	close(release)
	require.NoError(t, <-done)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	assert.False(t, s.Loading())
}

func TestCreate_ListOfOtherUserIsLeftAlone(t *testing.T) {
	auth := &switchAuth{userID: "u1"}
	store := &mockStore{
		listFn:   func(ctx context.Context, userID string) ([]model.EventRow, error) { return storedRows(), nil },
		insertFn: echoInsert("new-1"),
	}
	s := NewSync(store, auth, WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))
	auth.userID = "u2"

	_, err := s.Create(context.Background(), BookingInput{
		Name: "D", ContactNo: "444", Date: day(2025, 7, 2), Time: "01:00 PM",
		HallType: model.HallKitty, Description: "tea",
	})

	require.NoError(t, err)
	require.Len(t, store.inserts, 1)
	assert.Equal(t, "u2", store.inserts[0].UserID)
	assert.Len(t, s.Events(), 2)
}

type switchAuth struct{ userID string }

func (a *switchAuth) CurrentUser() (string, bool) { return a.userID, a.userID != "" }

func TestCreate_AppendsWithoutResorting(t *testing.T) {
	store := &mockStore{
		listFn:   func(ctx context.Context, userID string) ([]model.EventRow, error) { return storedRows(), nil },
		insertFn: echoInsert("new-1"),
	}
	s := NewSync(store, staticAuth{"u1"}, WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))

	ev, err := s.Create(context.Background(), BookingInput{
		Name: "Early", ContactNo: "333", Date: day(2025, 1, 2), Time: "09:00 AM",
		HallType: model.HallBanquet, Description: "brunch",
	})
	require.NoError(t, err)

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "new-1", events[2].ID)
	assert.Equal(t, ev, events[2])
	assert.True(t, events[2].Date.Before(events[0].Date))
	assert.Equal(t, 1, store.lists)
}

func TestCreate_TitlesAndStatus(t *testing.T) {
	cases := []struct {
		hall  model.HallType
		name  string
		title string
	}{
		{model.HallBanquet, "Ann", "Banquet Hall - Ann"},
		{model.HallKitty, "Bo", "Kitty Party Hall - Bo"},
		{model.HallRestaurant, "Sam", "Restaurant - Sam"},
	}
	for _, tc := range cases {
		t.Run(string(tc.hall), func(t *testing.T) {
			store := &mockStore{insertFn: echoInsert("id-" + tc.name)}
			s := NewSync(store, staticAuth{"u1"}, WithLocation(time.UTC))

			ev, err := s.Create(context.Background(), BookingInput{
				Name: tc.name, ContactNo: "1", Date: day(2025, 6, 15), Time: "10:00 AM",
				HallType: tc.hall, Description: "d",
			})

			require.NoError(t, err)
			assert.Equal(t, tc.title, ev.Title)
			assert.Equal(t, model.StatusConfirmed, ev.Status)
			require.Len(t, store.inserts, 1)
			sent := store.inserts[0]
			assert.Equal(t, "u1", sent.UserID)
			assert.Equal(t, "2025-06-15", sent.Date)
			assert.Equal(t, model.StatusConfirmed, sent.Status)
			assert.Equal(t, tc.title, sent.Title)
			assert.Len(t, s.Events(), 1)
		})
	}
}

func TestCreate_UnauthenticatedMakesNoCall(t *testing.T) {
	store := &mockStore{}
	notes := &recordingNotifier{}
	s := NewSync(store, staticAuth{}, WithNotifier(notes))

	_, err := s.Create(context.Background(), BookingInput{Name: "Sam", HallType: model.HallRestaurant})

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, store.inserts)
	assert.Empty(t, s.Events())
	require.Len(t, notes.notices, 1)
	assert.Equal(t, "You must be logged in to create events", notes.notices[0].Description)
}

func TestCreate_InsertFailureLeavesListUnchanged(t *testing.T) {
	store := &mockStore{
		listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) { return storedRows(), nil },
		insertFn: func(ctx context.Context, row model.EventRow) (model.EventRow, error) {
			return model.EventRow{}, errors.New("permission denied")
		},
	}
	notes := &recordingNotifier{}
	s := NewSync(store, staticAuth{"u1"}, WithNotifier(notes), WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background(), "u1"))

	_, err := s.Create(context.Background(), BookingInput{
		Name: "Sam", ContactNo: "1", Date: day(2025, 6, 15), Time: "10:00 AM",
		HallType: model.HallRestaurant, Description: "d",
	})

	var writeErr *StoreWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Len(t, s.Events(), 2)
	require.Len(t, notes.notices, 1)
	assert.Equal(t, "Failed to save event to database", notes.notices[0].Description)
}

func TestCreate_SuccessNotice(t *testing.T) {
	store := &mockStore{insertFn: echoInsert("n1")}
	notes := &recordingNotifier{}
	s := NewSync(store, staticAuth{"u1"}, WithNotifier(notes), WithLocation(time.UTC))

	_, err := s.Create(context.Background(), BookingInput{
		Name: "Sam", ContactNo: "1", Date: day(2025, 6, 15), Time: "10:00 AM",
		HallType: model.HallRestaurant, Description: "d",
	})

	require.NoError(t, err)
	require.Len(t, notes.notices, 1)
	assert.False(t, notes.notices[0].Destructive)
	assert.Equal(t, "Thank you Sam! Your Restaurant booking for Jun 15, 2025 at 10:00 AM has been successfully saved.",
		notes.notices[0].Description)
}

func TestRefetch_UsesAuthenticatedUser(t *testing.T) {
	var seen []string
	store := &mockStore{listFn: func(ctx context.Context, userID string) ([]model.EventRow, error) {
		seen = append(seen, userID)
		return nil, nil
	}}
	s := NewSync(store, staticAuth{"u7"})

	require.NoError(t, s.Refetch(context.Background()))

	assert.Equal(t, []string{"u7"}, seen)
}
