// Package config loads the server's settings from the environment.  The
// server's main loads a .env file first, so every value here may come from
// either source.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the settings every deployment must provide.
type Config struct {
	Env            string // dev, test or prod
	Port           string
	DBUser         string
	DBPass         string // may be empty
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	// Location is the zone booking dates are interpreted in when grouping
	// by calendar day and exporting.
	Location *time.Location
}

// Load reads the required variables and exits the process when one is
// missing or malformed.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		Location:       location(envStr("APP_TIMEZONE", "Local")),
	}
}

func location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
	}
	return loc
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
