// Command bookcal is a terminal front end for the booking calendar: sign
// in, browse a month, list a day's bookings, and book a hall.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("bookcal failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bookcal",
		Usage: "Book banquet, kitty party and restaurant halls from the terminal.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", EnvVars: []string{"BOOKCAL_SERVER"}, Usage: "booking API base URL"},
			&cli.StringFlag{Name: "session", Value: defaultSessionPath(), EnvVars: []string{"BOOKCAL_SESSION"}, Usage: "file holding the signed-in session"},
			&cli.StringFlag{Name: "tz", Value: "Local", EnvVars: []string{"BOOKCAL_TZ"}, Usage: "time zone used to group bookings by day"},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(setupLogger(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			signOutCommand(),
			monthCommand(),
			dayCommand(),
			bookCommand(),
			historyCommand(),
			profileCommand(),
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
