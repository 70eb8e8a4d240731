package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/iliyamo/event-booking-calendar/internal/calendar"
	"github.com/iliyamo/event-booking-calendar/internal/client"
)

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bookcal-session.json"
	}
	return filepath.Join(dir, "bookcal", "session.json")
}

func loadSession(path string) (client.Session, error) {
	var s client.Session
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("session file %s: %w", path, err)
	}
	return s, nil
}

func saveSession(path string, s client.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// env is what every command works with: the API client restored from the
// session file and a calendar synchronized for its user.
type env struct {
	client *client.Client
	sync   *calendar.Sync
	loc    *time.Location
	out    io.Writer
}

func setup(c *cli.Context) (*env, error) {
	loc, err := time.LoadLocation(c.String("tz"))
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.String("tz"), err)
	}
	s, err := loadSession(c.String("session"))
	if err != nil {
		return nil, err
	}
	cl := client.New(c.String("server"), client.WithSession(s))
	out := c.App.Writer
	notify := calendar.NotifierFunc(func(n calendar.Notice) {
		if n.Destructive {
			fmt.Fprintf(c.App.ErrWriter, "! %s: %s\n", n.Title, n.Description)
			return
		}
		fmt.Fprintf(out, "%s %s\n", n.Title, n.Description)
	})
	return &env{
		client: cl,
		sync:   calendar.NewSync(cl, cl, calendar.WithNotifier(notify), calendar.WithLocation(loc)),
		loc:    loc,
		out:    out,
	}, nil
}

// requireEvents loads the signed-in user's bookings.
func (e *env) requireEvents(c *cli.Context) error {
	uid, ok := e.client.CurrentUser()
	if !ok {
		return errors.New("not signed in; run `bookcal login` first")
	}
	if err := e.sync.HandleSession(c.Context, uid); err != nil {
		return err
	}
	slog.Debug("events loaded", "user", uid, "count", len(e.sync.Events()))
	return nil
}

// persist writes the client's session back, which may carry a renewed
// access token.
func (e *env) persist(c *cli.Context) {
	if err := saveSession(c.String("session"), e.client.Session()); err != nil {
		slog.Warn("could not save session", "error", err)
	}
}
