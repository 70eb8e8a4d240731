package model

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date format used for the `date` column and
// on the wire.  Event dates carry no time-of-day.
const DateLayout = "2006-01-02"

// HallType identifies the kind of venue that is booked.
type HallType string

const (
	HallBanquet    HallType = "banquet"
	HallKitty      HallType = "kitty"
	HallRestaurant HallType = "restaurant"
)

// HallTypes lists the fixed enumeration in display order.
var HallTypes = []HallType{HallBanquet, HallKitty, HallRestaurant}

var hallLabels = map[HallType]string{
	HallBanquet:    "Banquet Hall",
	HallKitty:      "Kitty Party Hall",
	HallRestaurant: "Restaurant",
}

// Label returns the display label of the hall type.  Values outside the
// enumeration are returned unchanged.
func (h HallType) Label() string {
	if l, ok := hallLabels[h]; ok {
		return l
	}
	return string(h)
}

// Valid reports whether h is one of the fixed hall types.
func (h HallType) Valid() bool {
	_, ok := hallLabels[h]
	return ok
}

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// BookingTitle builds the display title of an event from its hall type and
// client name, e.g. "Restaurant - Sam".
func BookingTitle(h HallType, clientName string) string {
	return h.Label() + " - " + clientName
}

// Event is the in-memory shape of a booking as consumed by the calendar,
// detail and history views.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	ClientName  string    `json:"client_name"`
	ContactNo   string    `json:"contact_no"`
	HallType    HallType  `json:"hall_type"`
}

// EventRow mirrors the `events` table and the JSON rows exchanged with the
// event store.  Date is an ISO calendar date string and ID is assigned by the
// store.  CreatedAt is zero until the row is stored.
type EventRow struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	ContactNo   string    `json:"contact_no"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	HallType    HallType  `json:"hall_type"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ToEvent maps a stored row to the in-memory event shape.  The date is
// interpreted in loc so that every event of a session shares one local-date
// representation.
func (r EventRow) ToEvent(loc *time.Location) (Event, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := ParseDate(r.Date, loc)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", r.ID, err)
	}
	return Event{
		ID:          r.ID,
		Title:       r.Title,
		Date:        d,
		Time:        r.Time,
		Description: r.Description,
		Status:      r.Status,
		ClientName:  r.ClientName,
		ContactNo:   r.ContactNo,
		HallType:    r.HallType,
	}, nil
}

// ParseDate parses an ISO calendar date.  Full RFC 3339 timestamps are
// accepted as well and truncated to their date part.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
