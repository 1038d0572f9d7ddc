package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	SessionStoreSQLite = "sqlite"
	SessionStoreJSON   = "json"
)

// Config holds application configuration.
type Config struct {
	BaseURL             string   `json:"baseUrl"`
	Timeout             Duration `json:"timeout"`
	BookmarksStaleTime  Duration `json:"bookmarksStaleTime"` // 0 = fresh until invalidated
	NoticeDuration      Duration `json:"noticeDuration"`
	LogLevel            string   `json:"logLevel"`
	LogFile             string   `json:"logFile"`
	SessionStore        string   `json:"sessionStore"` // "sqlite" | "json"
	SessionPath         string   `json:"sessionPath"`
	CheckConcurrency    int      `json:"checkConcurrency"`
	CheckExcludeDomains []string `json:"checkExcludeDomains"`
}

// Duration is a time.Duration that reads and writes as "15s" in JSON.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"15s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		Timeout:             Duration(15 * time.Second),
		BookmarksStaleTime:  0,
		NoticeDuration:      Duration(4 * time.Second),
		LogLevel:            "info",
		SessionStore:        SessionStoreSQLite,
		CheckConcurrency:    10,
		CheckExcludeDomains: []string{"github.com", "gitlab.com"},
	}
}

// Load reads config from the JSON file, creating it with defaults if it
// doesn't exist, then applies environment overrides and fills in paths
// relative to the config directory.
func Load(path string) (*Config, error) {
	config, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if config.LogFile == "" {
		config.LogFile = filepath.Join(dir, "bmc.log")
	}
	if config.SessionPath == "" {
		if config.SessionStore == SessionStoreJSON {
			config.SessionPath = filepath.Join(dir, "session.json")
		} else {
			config.SessionPath = filepath.Join(dir, "session.db")
		}
	}

	return config, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Create the config file with defaults
			if saveErr := Save(path, &config); saveErr != nil {
				// Non-fatal: return defaults even if save fails
				return &config, nil
			}
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.NoticeDuration == 0 {
		config.NoticeDuration = defaults.NoticeDuration
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.SessionStore == "" {
		config.SessionStore = defaults.SessionStore
	}
	if config.CheckConcurrency <= 0 {
		config.CheckConcurrency = defaults.CheckConcurrency
	}
	if config.CheckExcludeDomains == nil {
		config.CheckExcludeDomains = defaults.CheckExcludeDomains
	}

	return &config, nil
}

// applyEnv overrides file values with BMC_* environment variables.
func applyEnv(config *Config) error {
	config.BaseURL = getenv("BMC_BASE_URL", config.BaseURL)
	config.LogLevel = getenv("BMC_LOG_LEVEL", config.LogLevel)

	if v := os.Getenv("BMC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BMC_TIMEOUT %q: %w", v, err)
		}
		config.Timeout = Duration(d)
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	switch config.SessionStore {
	case SessionStoreSQLite, SessionStoreJSON:
	default:
		return fmt.Errorf("unknown sessionStore %q (want %q or %q)",
			config.SessionStore, SessionStoreSQLite, SessionStoreJSON)
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Save writes config to the JSON file.
// Creates the directory if it doesn't exist.
func Save(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the default config path: ~/.config/bmc/config.json
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmc", "config.json"), nil
}
