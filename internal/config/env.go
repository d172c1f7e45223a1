package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ApplyEnv
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvSQLitePath      = "TRACKER_SQLITE_PATH"
	EnvTracker         = "TRACKER_BACKEND"
	EnvLogLevel        = "LOG_LEVEL"
	EnvPort            = "PORT"
	EnvDefaultLocation = "DEFAULT_LOCATION"
)

// ApplyEnv overrides fields with any set environment variables
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv(EnvSQLitePath); v != "" {
		c.SQLitePath = v
	}
	if v := getenv(EnvTracker); v != "" {
		c.Tracker = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvDefaultLocation); v != "" {
		c.DefaultLocation = v
	}

	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}

	return nil
}
