// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all runtime configuration for the tracker service.
type Config struct {
	Port             string
	GRPCPort         string
	DatabaseDriver   string
	DatabaseURL      string
	RedisURL         string // empty: events are only logged
	FollowUpSchedule string
	FollowUpAfter    int // days
}

// Load reads a .env file when present, then the environment, and returns a
// validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	driver := getenv("DATABASE_DRIVER", DriverPostgres)
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, driver)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	after, err := strconv.Atoi(getenv("FOLLOW_UP_AFTER_DAYS", "14"))
	if err != nil || after < 1 {
		return nil, fmt.Errorf("FOLLOW_UP_AFTER_DAYS must be a positive integer")
	}

	return &Config{
		Port:             getenv("TRACKER_PORT", "8082"),
		GRPCPort:         getenv("TRACKER_GRPC_PORT", "9082"),
		DatabaseDriver:   driver,
		DatabaseURL:      dbURL,
		RedisURL:         os.Getenv("REDIS_URL"),
		FollowUpSchedule: getenv("FOLLOW_UP_SCHEDULE", "@every 24h"),
		FollowUpAfter:    after,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
