package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// EventRepo persists bookings in the `events` table.  Every query is scoped
// by user_id so a caller only ever sees its own rows.  It satisfies
// calendar.Store.
type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db, now: time.Now}
}

const eventColumns = `id, user_id, title, client_name, contact_no, date, time, hall_type, description, status, created_at`

// ListEvents returns the rows owned by userID ordered by ascending date.
// Rows of the same date keep their creation order.
func (r *EventRepo) ListEvents(ctx context.Context, userID string) ([]model.EventRow, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE user_id = ? ORDER BY date ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertEvent stores one row and returns it as persisted.  The id is
// generated here; any id on the input is ignored.
func (r *EventRepo) InsertEvent(ctx context.Context, row model.EventRow) (model.EventRow, error) {
	row.ID = uuid.NewString()
	if row.Status == "" {
		row.Status = model.StatusConfirmed
	}
	row.CreatedAt = r.now().UTC().Truncate(time.Second)

	const q = `INSERT INTO events (id, user_id, title, client_name, contact_no, date, time, hall_type, description, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		row.ID, row.UserID, row.Title, row.ClientName, row.ContactNo, row.Date,
		row.Time, row.HallType, row.Description, row.Status, row.CreatedAt,
	); err != nil {
		return model.EventRow{}, err
	}
	return row, nil
}

// GetByIDAndUser loads a single row owned by userID.  It returns ErrNotFound
// when the row does not exist or belongs to someone else.
func (r *EventRepo) GetByIDAndUser(ctx context.Context, id, userID string) (model.EventRow, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ? AND user_id = ? LIMIT 1`
	row, err := scanEvent(r.db.QueryRowContext(ctx, q, id, userID))
	if err == sql.ErrNoRows {
		return model.EventRow{}, ErrNotFound
	}
	return row, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (model.EventRow, error) {
	var (
		row  model.EventRow
		date time.Time
		desc sql.NullString
	)
	if err := s.Scan(&row.ID, &row.UserID, &row.Title, &row.ClientName, &row.ContactNo, &date,
		&row.Time, &row.HallType, &desc, &row.Status, &row.CreatedAt); err != nil {
		return model.EventRow{}, err
	}
	// DATE columns come back as UTC midnight with parseTime=true
	row.Date = date.Format(model.DateLayout)
	row.Description = desc.String
	return row, nil
}
