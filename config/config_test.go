package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
username: jane
user_agent: "myapp (jane@example.com)"
history_db: ./tvue.sqlite
backup:
  compress: zip
  dir: /backups
import:
  account_tag: ib
  retries: 5
  wait_retries: 10
  wait_interval: 30s
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jane", cfg.Username)
	assert.Equal(t, "https://www.tradervue.com", cfg.BaseURL) // default kept
	assert.Equal(t, "zip", cfg.Backup.Compress)
	assert.Equal(t, "ib", cfg.Import.AccountTag)
	assert.Equal(t, 5, cfg.Import.Retries)
	assert.Equal(t, "30s", cfg.Import.WaitInterval)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "username": "jane",
  "user_agent": "myapp (jane@example.com)",
  "import": {"retries": 2, "wait_retries": 2, "wait_interval": "5s"}
}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jane", cfg.Username)
	assert.Equal(t, 2, cfg.Import.Retries)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, false},
		{"non-http base url", func(c *Config) { c.BaseURL = "ftp://x" }, false},
		{"missing user agent", func(c *Config) { c.UserAgent = "" }, false},
		{"bad compress", func(c *Config) { c.Backup.Compress = "rar" }, false},
		{"xz compress", func(c *Config) { c.Backup.Compress = "xz" }, true},
		{"zero retries", func(c *Config) { c.Import.Retries = 0 }, false},
		{"zero wait retries", func(c *Config) { c.Import.WaitRetries = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
