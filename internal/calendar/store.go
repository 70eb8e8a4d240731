// Package calendar holds the client-side booking logic: the event
// synchronization state owned by a signed-in session, the calendar-day
// grouping helpers used by the month, day and history views, and the booking
// submission flow.  It is transport agnostic; the event store is reached
// through the Store interface.
package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// Store is the event store collaborator.  ListEvents returns the rows owned
// by userID ordered by ascending date.  InsertEvent stores one row and
// returns it as persisted, including the generated id.
type Store interface {
	ListEvents(ctx context.Context, userID string) ([]model.EventRow, error)
	InsertEvent(ctx context.Context, row model.EventRow) (model.EventRow, error)
}

// Authenticator supplies the identifier of the signed-in user.  ok is false
// when nobody is signed in.
type Authenticator interface {
	CurrentUser() (userID string, ok bool)
}

// Notice is a user-visible notification (a toast in the web client, a line
// on stderr in the CLI).
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

// Notifier receives notices produced by the synchronization module.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// ErrUnauthenticated is returned by Sync.Create when no user is signed in.
// No store call is made in that case.
var ErrUnauthenticated = errors.New("calendar: not authenticated")

// StoreReadError reports a rejected list query.  The in-memory list keeps
// its previous value.
type StoreReadError struct {
	UserID string
	Err    error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("calendar: load events for %s: %v", e.UserID, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError reports a rejected insert.  The in-memory list is
// unchanged.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("calendar: save event: %v", e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
