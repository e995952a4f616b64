package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Point the loader at a directory with no config file.
	t.Setenv("RETRO_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(16777216), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 50, cfg.Limits.MaxFiles)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RETRO_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RETRO_SERVER_PORT", "9090")
	t.Setenv("RETRO_LOGGING_LEVEL", "debug")
	t.Setenv("RETRO_LIMITS_MAX_FILES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Limits.MaxFiles)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7001\nlogging:\n  level: warn\n")
	require.NoError(t, os.WriteFile(configFile, content, 0644))

	t.Setenv("RETRO_CONFIG_FILE", configFile)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Env wins over the file.
	t.Setenv("RETRO_SERVER_PORT", "7002")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 7002, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server: [not a map"), 0644))

	t.Setenv("RETRO_CONFIG_FILE", configFile)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{
				Port:         8080,
				ReadTimeout:  time.Second,
				WriteTimeout: time.Second,
			},
			Security: SecurityConfig{AllowedOrigins: []string{"http://localhost:8080"}},
			Limits:   LimitsConfig{MaxUploadBytes: 1024, MaxFiles: 10, MaxVoteBound: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"no origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"bad upload limit", func(c *Config) { c.Limits.MaxUploadBytes = 0 }, "max upload bytes"},
		{"bad file limit", func(c *Config) { c.Limits.MaxFiles = -1 }, "max files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Security: SecurityConfig{AllowedOrigins: []string{"http://localhost:8080"}},
		Limits:   LimitsConfig{MaxUploadBytes: 1024, MaxFiles: 10},
		Logging:  LoggingConfig{Format: "xml", Output: "syslog"},
	}

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
}
