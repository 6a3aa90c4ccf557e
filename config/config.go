// Package config loads the tvue configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything a run needs besides the password, which always
// comes from the credential store.
type Config struct {
	BaseURL    string       `json:"base_url" yaml:"base_url"`
	Username   string       `json:"username" yaml:"username"`
	TargetUser string       `json:"target_user,omitempty" yaml:"target_user,omitempty"`
	UserAgent  string       `json:"user_agent" yaml:"user_agent"`
	HistoryDB  string       `json:"history_db,omitempty" yaml:"history_db,omitempty"`
	Backup     BackupConfig `json:"backup" yaml:"backup"`
	Import     ImportConfig `json:"import" yaml:"import"`
}

// BackupConfig controls the backup artifact pipeline.
type BackupConfig struct {
	Out      string `json:"out,omitempty" yaml:"out,omitempty"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Compress string `json:"compress,omitempty" yaml:"compress,omitempty"` // "", "zip" or "xz"
}

// ImportConfig carries the retry/poll defaults for execution imports.
type ImportConfig struct {
	AccountTag   string `json:"account_tag,omitempty" yaml:"account_tag,omitempty"`
	Retries      int    `json:"retries" yaml:"retries"`
	WaitRetries  int    `json:"wait_retries" yaml:"wait_retries"`
	WaitInterval string `json:"wait_interval" yaml:"wait_interval"` // e.g. "15s"
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL: %s", c.BaseURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required, e.g. 'MyApp (you@example.com)'")
	}
	switch c.Backup.Compress {
	case "", "zip", "xz":
	default:
		return fmt.Errorf("backup.compress must be 'zip' or 'xz', saw %q", c.Backup.Compress)
	}
	if c.Import.Retries < 1 {
		return fmt.Errorf("import.retries must be at least 1")
	}
	if c.Import.WaitRetries < 1 {
		return fmt.Errorf("import.wait_retries must be at least 1")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		BaseURL:   "https://www.tradervue.com",
		UserAgent: "tvue (https://github.com/rustyeddy/tvue)",
		Backup: BackupConfig{
			Out: "./tradervue-backup.json",
		},
		Import: ImportConfig{
			Retries:      3,
			WaitRetries:  3,
			WaitInterval: "15s",
		},
	}
}
