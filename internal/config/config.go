// Package config provides configuration loading and validation for the CLI and servers.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/career-pilot/internal/llm"
)

// Tracker backends
const (
	TrackerMemory   = "memory"
	TrackerPostgres = "postgres"
	TrackerSQLite   = "sqlite"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, env vars or CLI flags.
type Config struct {
	// Agent
	APIKey          string            `json:"api_key,omitempty"`          // Gemini API key
	Models          map[string]string `json:"models,omitempty"`           // Model per tier: lite, standard, advanced
	DefaultLocation string            `json:"default_location,omitempty"` // Location searched when none is given

	// Tracker persistence
	Tracker     string `json:"tracker,omitempty"`      // memory, postgres or sqlite
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // SQLite database file

	// Serving
	Port       int    `json:"port,omitempty"`
	CORSOrigin string `json:"cors_origin,omitempty"`
	LogLevel   string `json:"log_level,omitempty"`

	// Batch analysis
	AnalyzeConcurrency int `json:"analyze_concurrency,omitempty"` // Parallel analyses in CLI batch mode
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		DefaultLocation:    "Remote",
		Tracker:            TrackerMemory,
		SQLitePath:         defaultSQLitePath(),
		Port:               8080,
		CORSOrigin:         "*",
		LogLevel:           "info",
		AnalyzeConcurrency: 3,
	}
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "career_pilot.db"
	}
	return filepath.Join(home, ".career_pilot", "tracker.db")
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	switch c.Tracker {
	case "", TrackerMemory, TrackerSQLite:
	case TrackerPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres tracker")
		}
	default:
		return fmt.Errorf("config error: unknown tracker %q (valid: memory, postgres, sqlite)", c.Tracker)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.AnalyzeConcurrency < 0 {
		return fmt.Errorf("config error: 'analyze_concurrency' must be non-negative")
	}

	for tier := range c.Models {
		if _, err := parseTier(tier); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DefaultLocation == "" {
		result.DefaultLocation = defaults.DefaultLocation
	}
	if result.Tracker == "" {
		result.Tracker = defaults.Tracker
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.CORSOrigin == "" {
		result.CORSOrigin = defaults.CORSOrigin
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.AnalyzeConcurrency == 0 {
		result.AnalyzeConcurrency = defaults.AnalyzeConcurrency
	}

	models := make(map[string]string, len(defaults.Models)+len(c.Models))
	for k, v := range defaults.Models {
		models[k] = v
	}
	for k, v := range c.Models {
		if v != "" {
			models[k] = v
		}
	}
	if len(models) > 0 {
		result.Models = models
	} else {
		result.Models = nil
	}

	return result
}

// LLMConfig builds the model configuration with any per-tier overrides applied
func (c *Config) LLMConfig() (*llm.Config, error) {
	overrides := make(map[llm.ModelTier]string, len(c.Models))
	for name, model := range c.Models {
		tier, err := parseTier(name)
		if err != nil {
			return nil, err
		}
		overrides[tier] = model
	}
	return llm.DefaultConfig().WithModels(overrides), nil
}

func parseTier(name string) (llm.ModelTier, error) {
	switch tier := llm.ModelTier(strings.ToLower(strings.TrimSpace(name))); tier {
	case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		return tier, nil
	default:
		return "", fmt.Errorf("unknown model tier %q (valid: lite, standard, advanced)", name)
	}
}

// Load resolves the effective configuration: built-in defaults, then the optional
// config file, then environment variables. The result is validated.
func Load(path string) (Config, error) {
	file := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}

	cfg := file.MergeWithDefaults(Defaults())
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
