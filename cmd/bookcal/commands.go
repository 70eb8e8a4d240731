package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/iliyamo/event-booking-calendar/internal/calendar"
	"github.com/iliyamo/event-booking-calendar/internal/client"
	"github.com/iliyamo/event-booking-calendar/internal/model"
)

var credentialFlags = []cli.Flag{
	&cli.StringFlag{Name: "email", Required: true},
	&cli.StringFlag{Name: "password", EnvVars: []string{"BOOKCAL_PASSWORD"}, Usage: "read from stdin when empty"},
}

func password(c *cli.Context) (string, error) {
	if p := c.String("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(c.App.ErrWriter, "Password: ")
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type authFunc func(e *env, c *cli.Context, email, pw string) (client.Session, error)

func authAction(do authFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		pw, err := password(c)
		if err != nil {
			return err
		}
		s, err := do(e, c, c.String("email"), pw)
		if err != nil {
			return err
		}
		e.persist(c)
		fmt.Fprintf(e.out, "Signed in as %s\n", s.Email)
		return nil
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in.",
		Flags: credentialFlags,
		Action: authAction(func(e *env, c *cli.Context, email, pw string) (client.Session, error) {
			return e.client.Register(c.Context, email, pw)
		}),
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with an existing account.",
		Flags: credentialFlags,
		Action: authAction(func(e *env, c *cli.Context, email, pw string) (client.Session, error) {
			return e.client.Login(c.Context, email, pw)
		}),
	}
}

func signOutCommand() *cli.Command {
	return &cli.Command{
		Name:  "signout",
		Usage: "Revoke the session and forget it locally.",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			err = e.client.SignOut(c.Context)
			// the local session and the calendar are cleared regardless
			_ = e.sync.HandleSession(c.Context, "")
			e.persist(c)
			if err != nil {
				return fmt.Errorf("sign out: %w", err)
			}
			fmt.Fprintln(e.out, "Signed out.")
			return nil
		},
	}
}

func monthCommand() *cli.Command {
	return &cli.Command{
		Name:  "month",
		Usage: "Show a month grid with the days that have bookings.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "month", Usage: "YYYY-MM, defaults to the current month"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.persist(c)
			ref := time.Now().In(e.loc)
			if m := c.String("month"); m != "" {
				if ref, err = time.ParseInLocation("2006-01", m, e.loc); err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM", m)
				}
			}
			if err := e.requireEvents(c); err != nil {
				return err
			}
			renderMonth(e.out, ref.Year(), ref.Month(), calendar.MonthCounts(e.sync.Events(), ref.Year(), ref.Month(), e.loc))
			return nil
		},
	}
}

func dayCommand() *cli.Command {
	return &cli.Command{
		Name:      "day",
		Usage:     "List the bookings of one day.",
		ArgsUsage: "YYYY-MM-DD",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.persist(c)
			day, err := model.ParseDate(c.Args().First(), e.loc)
			if err != nil {
				return err
			}
			if err := e.requireEvents(c); err != nil {
				return err
			}
			on := calendar.EventsOn(e.sync.Events(), day)
			fmt.Fprintf(e.out, "%s: %s\n", day.Format("Monday, January 2, 2006"), plural(len(on), "booking"))
			renderEvents(e.out, on)
			return nil
		},
	}
}

func hallNames() string {
	names := make([]string, len(model.HallTypes))
	for i, h := range model.HallTypes {
		names[i] = string(h)
	}
	return strings.Join(names, ", ")
}

func bookCommand() *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "Book a hall for a client.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "name", Usage: "client name"},
			&cli.StringFlag{Name: "contact", Usage: "client contact number"},
			&cli.StringFlag{Name: "hall", Usage: "one of " + hallNames()},
			&cli.StringFlag{Name: "time", Usage: "one of " + strings.Join(calendar.PredefinedTimes, ", ")},
			&cli.StringFlag{Name: "custom-time", Usage: "any other time, free text"},
			&cli.StringFlag{Name: "description"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.persist(c)
			date, err := model.ParseDate(c.String("date"), e.loc)
			if err != nil {
				return err
			}
			if err := e.requireEvents(c); err != nil {
				return err
			}

			sub := calendar.NewSubmitter(e.sync)
			sub.Open(date)
			sub.Edit(func(f *calendar.Form) {
				f.Name = c.String("name")
				f.ContactNo = c.String("contact")
				f.HallType = model.HallType(strings.ToLower(c.String("hall")))
				f.Description = c.String("description")
				if ct := c.String("custom-time"); ct != "" {
					f.SelectTime(calendar.CustomTimeSlot)
					f.Time = ct
				} else {
					f.SelectTime(c.String("time"))
				}
			})

			_, err = sub.Submit(c.Context)
			var verr *calendar.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("missing or invalid: %s", strings.Join(verr.Fields, ", "))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s now has %s.\n", model.FormatDate(date), plural(calendar.CountOn(e.sync.Events(), date), "booking"))
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show upcoming and past bookings with totals.",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.persist(c)
			if err := e.requireEvents(c); err != nil {
				return err
			}
			renderHistory(e.out, e.sync.Events(), time.Now().In(e.loc))
			return nil
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show the profile, or update it with --name and --phone.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "phone"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.persist(c)
			p, err := e.client.Profile(c.Context)
			if err != nil {
				return err
			}
			if c.IsSet("name") || c.IsSet("phone") {
				name, phone := p.FullName, p.Phone
				if c.IsSet("name") {
					v := c.String("name")
					name = &v
				}
				if c.IsSet("phone") {
					v := c.String("phone")
					phone = &v
				}
				if p, err = e.client.UpdateProfile(c.Context, name, phone); err != nil {
					return err
				}
			}
			fmt.Fprintf(e.out, "Email:  %s\nName:   %s\nPhone:  %s\n", e.client.Session().Email, deref(p.FullName), deref(p.Phone))
			return nil
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
