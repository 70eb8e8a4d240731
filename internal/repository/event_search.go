package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// EventFilter narrows a user's bookings.  Zero fields do not filter.  From
// and To are inclusive YYYY-MM-DD dates.
type EventFilter struct {
	Client   string // substring of client name, title or contact number
	HallType model.HallType
	Status   model.Status
	From     string
	To       string
}

func (f EventFilter) Empty() bool { return f == EventFilter{} }

// SearchEvents returns the user's rows matching f, in the same order as
// ListEvents.
func (r *EventRepo) SearchEvents(ctx context.Context, userID string, f EventFilter) ([]model.EventRow, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if f.Client != "" {
		where = append(where, "(LOWER(client_name) LIKE ? OR LOWER(title) LIKE ? OR contact_no LIKE ?)")
		like := "%" + escapeLike(strings.ToLower(f.Client)) + "%"
		args = append(args, like, like, like)
	}
	if f.HallType != "" {
		where = append(where, "hall_type = ?")
		args = append(args, f.HallType)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}

	q := `SELECT ` + eventColumns + ` FROM events WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.EventRow{}
	for rows.Next() {
		row, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
