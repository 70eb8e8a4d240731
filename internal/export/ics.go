// Package export renders a user's bookings as an iCalendar feed so they can
// be subscribed to from any calendar application.
package export

import (
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

const productID = "-//iliyamo//event-booking-calendar//EN"

var icsStatus = map[model.Status]string{
	model.StatusConfirmed: "CONFIRMED",
	model.StatusPending:   "TENTATIVE",
	model.StatusCancelled: "CANCELLED",
}

// Calendar builds a VCALENDAR with one all-day VEVENT per booking.  The
// booking id is the UID, so re-imports update instead of duplicating.
func Calendar(events []model.Event, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		day := time.Date(ev.Date.Year(), ev.Date.Month(), ev.Date.Day(), 0, 0, 0, 0, time.UTC)
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ve.SetSummary(ev.Title)
		ve.SetDescription(describe(ev))
		if s, ok := icsStatus[ev.Status]; ok {
			ve.SetProperty(ics.ComponentPropertyStatus, s)
		}
	}
	return cal
}

// WriteCalendar serializes Calendar(events, stamp) to w.
func WriteCalendar(w io.Writer, events []model.Event, stamp time.Time) error {
	_, err := io.WriteString(w, Calendar(events, stamp).Serialize())
	return err
}

func describe(ev model.Event) string {
	lines := []string{
		"Time: " + ev.Time,
		"Hall: " + ev.HallType.Label(),
		"Client: " + ev.ClientName,
		"Contact: " + ev.ContactNo,
	}
	if ev.Description != "" {
		lines = append(lines, "", ev.Description)
	}
	return strings.Join(lines, "\n")
}
