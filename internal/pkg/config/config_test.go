package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "table", cfg.UI.ListStyle)
	assert.Equal(t, 100, cfg.Logs.Lines)
	assert.Equal(t, "/var/log/syslog", cfg.Logs.SyslogPath)
	assert.True(t, cfg.Exec.UseSudo)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svcman.yaml")
	content := `
ui:
  list_style: pager
logs:
  lines: 50
exec:
  use_sudo: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SVCMAN_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pager", cfg.UI.ListStyle)
	assert.Equal(t, 50, cfg.Logs.Lines)
	assert.False(t, cfg.Exec.UseSudo)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad list style", func(c *Config) { c.UI.ListStyle = "grid" }, true},
		{"zero lines", func(c *Config) { c.Logs.Lines = 0 }, true},
		{"auth without key", func(c *Config) { c.Security.EnableAuth = true }, true},
		{"auth with key", func(c *Config) {
			c.Security.EnableAuth = true
			c.Security.APIKey = "secret"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
