package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-booking-calendar/internal/model"
)

// ProfileRepo reads and upserts rows of the `profiles` table.  A profile
// shares its id with the user it describes.
type ProfileRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db, now: time.Now}
}

// Get returns the profile of userID or ErrNotFound when none was saved yet.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.Profile, error) {
	const q = `SELECT id, full_name, phone, updated_at FROM profiles WHERE id = ? LIMIT 1`
	var (
		p     model.Profile
		name  sql.NullString
		phone sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &name, &phone, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}
	if name.Valid {
		p.FullName = &name.String
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	return p, nil
}

// Upsert inserts the profile or overwrites its name and phone.
func (r *ProfileRepo) Upsert(ctx context.Context, p model.Profile) (model.Profile, error) {
	p.UpdatedAt = r.now().UTC().Truncate(time.Second)
	const q = `INSERT INTO profiles (id, full_name, phone, updated_at) VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE full_name = VALUES(full_name), phone = VALUES(phone), updated_at = VALUES(updated_at)`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.FullName, p.Phone, p.UpdatedAt); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}
