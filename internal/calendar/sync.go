package calendar

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// BookingInput carries the values collected by the booking form.  All fields
// are required; Sync does not re-validate them.
type BookingInput struct {
	Name        string
	ContactNo   string
	Date        time.Time
	Time        string
	HallType    model.HallType
	Description string
}

// Sync owns the in-memory event list of one signed-in session.  It is
// created at session start, replaced wholesale whenever the signed-in user
// changes and cleared at sign-out.
//
// Session transitions handled by Load:
//
//	signed out  -> signed out : list cleared, no store call
//	signed out  -> user A     : list cleared, events of A fetched
//	user A      -> user A     : events of A refetched, list kept on failure
//	user A      -> user B     : list cleared, events of B fetched
//	user A      -> signed out : list cleared, no store call
//
// Store calls run without holding the lock, so a Load and a Create may be in
// flight together.  Each applies its own result when it completes.  A load
// whose user is no longer the session user is dropped.
type Sync struct {
	store  Store
	auth   Authenticator
	notify Notifier
	loc    *time.Location

	mu      sync.Mutex
	userID  string
	gen     uint64
	events  []model.Event
	loading bool
}

// Option configures a Sync.
type Option func(*Sync)

// WithNotifier routes notices to n.  Notices are discarded by default.
func WithNotifier(n Notifier) Option {
	return func(s *Sync) {
		if n != nil {
			s.notify = n
		}
	}
}

// WithLocation sets the location in which event dates are interpreted.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Sync) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewSync returns a Sync reporting loading until its first Load completes.
func NewSync(store Store, auth Authenticator, opts ...Option) *Sync {
	s := &Sync{
		store:   store,
		auth:    auth,
		notify:  discardNotifier{},
		loc:     time.Local,
		loading: true,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Events returns a copy of the current list.  Right after a successful Load
// it is ordered by ascending date; events created afterwards are appended in
// insertion order.
func (s *Sync) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Loading reports whether a load is in progress or has not happened yet.
func (s *Sync) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// UserID returns the user whose events are held, or "" when signed out.
func (s *Sync) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Load replaces the list with the events of userID.  An empty userID means
// signed out: the list is cleared and no store call is made.  A failed query
// leaves the list as it was, emits a notice and returns a *StoreReadError.
func (s *Sync) Load(ctx context.Context, userID string) error {
	s.mu.Lock()
	if userID != s.userID {
		s.userID = userID
		s.events = nil
		s.gen++
	}
	if userID == "" {
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	s.loading = true
	s.mu.Unlock()

	rows, err := s.store.ListEvents(ctx, userID)
	var events []model.Event
	if err == nil {
		events, err = s.toEvents(rows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// the session moved on while the query was in flight
		return nil
	}
	s.loading = false
	if err != nil {
		log.Printf("calendar: load events for user %s failed: %v", userID, err)
		s.notify.Notify(Notice{
			Title:       "Error",
			Description: "Failed to load events from database",
			Destructive: true,
		})
		return &StoreReadError{UserID: userID, Err: err}
	}
	s.events = events
	return nil
}

// Refetch reloads the events of the currently authenticated user.
func (s *Sync) Refetch(ctx context.Context) error {
	userID, ok := s.auth.CurrentUser()
	if !ok {
		userID = ""
	}
	return s.Load(ctx, userID)
}

// HandleSession applies a session change reported by the authentication
// collaborator.  It is Load under the name used by session wiring.
func (s *Sync) HandleSession(ctx context.Context, userID string) error {
	return s.Load(ctx, userID)
}

// Create persists a booking for the authenticated user with status
// confirmed and appends the stored event to the end of the list without
// re-sorting or refetching.  It returns ErrUnauthenticated without calling
// the store when nobody is signed in, and a *StoreWriteError when the insert
// is rejected; the list is unchanged in both cases.  A list that currently
// belongs to a different user is also left unchanged, although the booking is
// still stored and returned.
func (s *Sync) Create(ctx context.Context, in BookingInput) (model.Event, error) {
	userID, ok := s.auth.CurrentUser()
	if !ok || userID == "" {
		s.notify.Notify(Notice{
			Title:       "Error",
			Description: "You must be logged in to create events",
			Destructive: true,
		})
		return model.Event{}, ErrUnauthenticated
	}

	row := model.EventRow{
		UserID:      userID,
		Title:       model.BookingTitle(in.HallType, in.Name),
		ClientName:  in.Name,
		ContactNo:   in.ContactNo,
		Date:        model.FormatDate(in.Date),
		Time:        in.Time,
		HallType:    in.HallType,
		Description: in.Description,
		Status:      model.StatusConfirmed,
	}

	saved, err := s.store.InsertEvent(ctx, row)
	var ev model.Event
	if err == nil {
		ev, err = saved.ToEvent(s.loc)
	}
	if err != nil {
		log.Printf("calendar: save event for user %s failed: %v", userID, err)
		s.notify.Notify(Notice{
			Title:       "Error",
			Description: "Failed to save event to database",
			Destructive: true,
		})
		return model.Event{}, &StoreWriteError{Err: err}
	}

	s.mu.Lock()
	if s.userID == "" || s.userID == userID {
		s.events = append(s.events, ev)
	}
	s.mu.Unlock()

	s.notify.Notify(Notice{
		Title: "Booking Confirmed!",
		Description: fmt.Sprintf("Thank you %s! Your %s booking for %s at %s has been successfully saved.",
			in.Name, in.HallType.Label(), in.Date.Format("Jan 2, 2006"), in.Time),
	})
	return ev, nil
}

func (s *Sync) toEvents(rows []model.EventRow) ([]model.Event, error) {
	events := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.ToEvent(s.loc)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
