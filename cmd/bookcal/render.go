package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/calendar"
	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// renderMonth prints a Sunday-first grid.  Days with bookings carry a '*'
// and are listed with their count below the grid.
func renderMonth(w io.Writer, year int, month time.Month, days []calendar.DayCount) {
	fmt.Fprintf(w, "%s %d\n", month, year)
	fmt.Fprintln(w, "Su  Mo  Tu  We  Th  Fr  Sa")

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var b strings.Builder
	b.WriteString(strings.Repeat("    ", int(first.Weekday())))
	for i, d := range days {
		mark := " "
		if d.Count > 0 {
			mark = "*"
		}
		fmt.Fprintf(&b, "%2d%s", i+1, mark)
		if (int(first.Weekday())+i+1)%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " \n"))

	for _, d := range days {
		if d.Count > 0 {
			fmt.Fprintf(w, "%s  %s\n", d.Date, plural(d.Count, "booking"))
		}
	}
}

func renderEvents(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No bookings.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tTITLE\tCONTACT\tSTATUS")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", model.FormatDate(e.Date), e.Time, e.Title, e.ContactNo, e.Status)
	}
	_ = tw.Flush()
}

func renderHistory(w io.Writer, events []model.Event, now time.Time) {
	h := calendar.SplitHistory(events, now)
	counts := calendar.CountByStatus(events)
	fmt.Fprintf(w, "Total %d  confirmed %d  pending %d  cancelled %d\n\n",
		len(events), counts[model.StatusConfirmed], counts[model.StatusPending], counts[model.StatusCancelled])

	fmt.Fprintln(w, "Upcoming")
	renderEvents(w, h.Upcoming)
	fmt.Fprintln(w, "\nPast")
	renderEvents(w, calendar.SortedByDateDesc(h.Past))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
