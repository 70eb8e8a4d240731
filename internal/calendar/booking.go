package calendar

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// CustomTimeSlot is the time selector value that switches the form to a
// free-text time entry.
const CustomTimeSlot = "custom"

// PredefinedTimes are the time slots offered by the booking form.
var PredefinedTimes = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM",
	"05:00 PM", "06:00 PM", "07:00 PM", "08:00 PM",
}

var (
	// ErrSubmitInFlight is returned by Submit while a previous submission
	// has not resolved yet.
	ErrSubmitInFlight = errors.New("calendar: submission already in progress")
	// ErrFormClosed is returned by Submit when the form is not open.
	ErrFormClosed = errors.New("calendar: booking form is closed")
)

// ValidationError lists the required form fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "calendar: missing required fields: " + strings.Join(e.Fields, ", ")
}

// Form holds the raw values of the booking form.
type Form struct {
	Name        string
	ContactNo   string
	Date        time.Time
	Time        string
	HallType    model.HallType
	Description string

	customTime bool
}

// NewForm returns an empty form preset to date.
func NewForm(date time.Time) Form {
	return Form{Date: date}
}

// SelectTime applies a choice from the time selector.  CustomTimeSlot
// clears the time and switches to free-text entry; any other value is taken
// as the time and leaves custom mode.
func (f *Form) SelectTime(v string) {
	if v == CustomTimeSlot {
		f.customTime = true
		f.Time = ""
		return
	}
	f.customTime = false
	f.Time = v
}

// CustomTime reports whether the time is entered as free text.
func (f Form) CustomTime() bool { return f.customTime }

// Validate checks that every required field is present.  A custom time is
// accepted in any format as long as it is not blank.
func (f Form) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.ContactNo) == "" {
		missing = append(missing, "contact_no")
	}
	if f.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(f.Time) == "" {
		missing = append(missing, "time")
	}
	if !f.HallType.Valid() {
		missing = append(missing, "hall_type")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Input converts the form into the values handed to the event store.
func (f Form) Input() BookingInput {
	return BookingInput{
		Name:        strings.TrimSpace(f.Name),
		ContactNo:   strings.TrimSpace(f.ContactNo),
		Date:        f.Date,
		Time:        strings.TrimSpace(f.Time),
		HallType:    f.HallType,
		Description: f.Description,
	}
}

// Creator persists a booking.  *Sync implements it.
type Creator interface {
	Create(ctx context.Context, in BookingInput) (model.Event, error)
}

// SubmitState is the state of the submit control.
type SubmitState int

const (
	Idle SubmitState = iota
	Submitting
)

func (s SubmitState) String() string {
	if s == Submitting {
		return "submitting"
	}
	return "idle"
}

// Submitter drives the booking dialog: it owns the form values and its open
// flag and lets at most one submission be in flight.
type Submitter struct {
	creator Creator
	now     func() time.Time

	mu      sync.Mutex
	form    Form
	open    bool
	state   SubmitState
	lastErr error
}

// NewSubmitter returns a closed submitter with an empty form dated today.
func NewSubmitter(c Creator) *Submitter {
	s := &Submitter{creator: c, now: time.Now}
	s.form = NewForm(s.now())
	return s
}

// Open shows the form.  A non-zero date preselects the booking date; the
// other field values are kept from any earlier unsuccessful attempt.
func (s *Submitter) Open(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !date.IsZero() {
		s.form.Date = date
	}
	s.open = true
}

// Close hides the form.  It is refused while a submission is in flight.
func (s *Submitter) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return false
	}
	s.open = false
	return true
}

// Edit applies fn to the form values.
func (s *Submitter) Edit(fn func(f *Form)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.form)
}

// Form returns a copy of the current form values.
func (s *Submitter) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Submitter) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Submitter) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last failed submission, nil after a
// successful one.
func (s *Submitter) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Submit validates the form and hands it to the creator.  On success the
// form is reset and closed.  On failure it stays open with its values so the
// user can retry; nothing is retried automatically.
func (s *Submitter) Submit(ctx context.Context) (model.Event, error) {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return model.Event{}, ErrSubmitInFlight
	}
	if !s.open {
		s.mu.Unlock()
		return model.Event{}, ErrFormClosed
	}
	if err := s.form.Validate(); err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return model.Event{}, err
	}
	in := s.form.Input()
	s.state = Submitting
	s.mu.Unlock()

	ev, err := s.creator.Create(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	if err != nil {
		log.Printf("calendar: submit booking failed: %v", err)
		s.lastErr = err
		return model.Event{}, err
	}
	s.lastErr = nil
	s.form = NewForm(s.now())
	s.open = false
	return ev, nil
}
