// Package config loads and saves the ots CLI configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/javanhut/ots-go/internal/calendar"
	"github.com/javanhut/ots-go/internal/explorer"
)

// Config represents ots configuration.
type Config struct {
	// Calendars are the calendar servers digests are submitted to.
	Calendars []string `json:"calendars"`

	// Explorer selects the verifier backend: "blockstream",
	// "blockchain.info", or "all" for both.
	Explorer string `json:"explorer"`

	// EsploraURL overrides the Esplora API base (self-hosted instances).
	EsploraURL string `json:"esplora_url,omitempty"`

	// TimeoutSeconds bounds each calendar request. Explorer requests use
	// the explorer package's fixed 30-second timeout instead.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Calendars:      append([]string(nil), calendar.DefaultCalendars...),
		Explorer:       "blockstream",
		EsploraURL:     explorer.DefaultEsploraURL,
		TimeoutSeconds: 30,
	}
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".otsconfig"), nil
}

// Load reads the config file, filling missing fields from the defaults.
// A missing file yields the defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(loaded.Calendars) > 0 {
		cfg.Calendars = loaded.Calendars
	}
	if loaded.Explorer != "" {
		cfg.Explorer = loaded.Explorer
	}
	if loaded.EsploraURL != "" {
		cfg.EsploraURL = loaded.EsploraURL
	}
	if loaded.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = loaded.TimeoutSeconds
	}
	return cfg, nil
}

// Save writes the config file.
func Save(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
