// Package queue carries booking notifications over RabbitMQ.
package queue

import (
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// BookingConfirmedEvent is published once a booking row has been stored.
// Consumers get everything needed to log or notify without reading the
// events table.
type BookingConfirmedEvent struct {
	EventID     string `json:"event_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	HallType    string `json:"hall_type"`
	ClientName  string `json:"client_name"`
	ContactNo   string `json:"contact_no"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ConfirmedAt string `json:"confirmed_at"`
}

// NewBookingConfirmed builds the message for a stored row.
func NewBookingConfirmed(row model.EventRow, at time.Time) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		EventID:     row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		HallType:    string(row.HallType),
		ClientName:  row.ClientName,
		ContactNo:   row.ContactNo,
		Date:        row.Date,
		Time:        row.Time,
		ConfirmedAt: at.UTC().Format(time.RFC3339),
	}
}
