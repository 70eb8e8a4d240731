package calendar

import (
	"sort"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// SameDay reports calendar-day equality: a and b share year, month and day
// in their own locations.  Time of day is ignored and no zone conversion is
// applied, so callers keep every value in one local-date representation.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// OccursOn reports whether any event falls on day.
func OccursOn(events []model.Event, day time.Time) bool {
	for _, e := range events {
		if SameDay(e.Date, day) {
			return true
		}
	}
	return false
}

// CountOn returns the number of events that fall on day.
func CountOn(events []model.Event, day time.Time) int {
	n := 0
	for _, e := range events {
		if SameDay(e.Date, day) {
			n++
		}
	}
	return n
}

// EventsOn returns the events that fall on day in their input order.
func EventsOn(events []model.Event, day time.Time) []model.Event {
	out := []model.Event{}
	for _, e := range events {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// DayCount is one cell of a month grid.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MonthCounts returns one entry per day of the given month with the number
// of events on that day.  Days are built in loc.
func MonthCounts(events []model.Event, year int, month time.Month, loc *time.Location) []DayCount {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	out := make([]DayCount, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		out = append(out, DayCount{Date: model.FormatDate(d), Count: CountOn(events, d)})
	}
	return out
}

// History splits events into those on a day before today and the rest.
// Both halves keep the input order.
type History struct {
	Past     []model.Event `json:"past"`
	Upcoming []model.Event `json:"upcoming"`
}

// SplitHistory partitions events relative to the calendar day of now.
func SplitHistory(events []model.Event, now time.Time) History {
	h := History{Past: []model.Event{}, Upcoming: []model.Event{}}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for _, e := range events {
		ey, em, ed := e.Date.Date()
		day := time.Date(ey, em, ed, 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			h.Past = append(h.Past, e)
		} else {
			h.Upcoming = append(h.Upcoming, e)
		}
	}
	return h
}

// SortedByDateDesc returns a copy of events ordered newest date first.  Ties
// keep their input order.
func SortedByDateDesc(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// CountByStatus tallies events per status.
func CountByStatus(events []model.Event) map[model.Status]int {
	out := map[model.Status]int{
		model.StatusConfirmed: 0,
		model.StatusPending:   0,
		model.StatusCancelled: 0,
	}
	for _, e := range events {
		out[e.Status]++
	}
	return out
}
