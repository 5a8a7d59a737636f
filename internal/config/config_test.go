package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "SERVER_PORT", "BASE_URL",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"ACCESS_TOKEN_DURATION", "SETTINGS_CACHE_TTL",
		"CLAIM_RATE_PER_MINUTE", "AUTH_RATE_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}

func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Data:      DataConfig{Path: "/var/lib/egghunt"},
		Server:    ServerConfig{Port: "4000", BaseURL: "http://localhost:5173"},
		Auth:      AuthConfig{AccessTokenDuration: time.Hour},
		Hunt:      HuntConfig{SettingsCacheTTL: 5 * time.Second},
		RateLimit: RateLimitConfig{ClaimPerMinute: 30, AuthPerMinute: 10},
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, filepath.Join(home, "EggHunt", "data"), cfg.Data.Path)
	assert.Equal(t, filepath.Join(home, "EggHunt", "data", "egghunt.db"), cfg.Data.DatabasePath())
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 5*time.Second, cfg.Hunt.SettingsCacheTTL)
	assert.Equal(t, 30, cfg.RateLimit.ClaimPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.AuthPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "5000")
	t.Setenv("LOG_LEVEL", "debug")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=error\nSETTINGS_CACHE_TTL=0s\n"), 0o600))
	// loadEnvFile only fills variables that are not set at all.
	require.NoError(t, os.Unsetenv("SETTINGS_CACHE_TTL"))
	t.Cleanup(func() { os.Unsetenv("SETTINGS_CACHE_TTL") })

	cfg, err := Load([]string{"-env-file=" + envFile, "-port=6000"})
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.Server.Port, "flag beats env")
	assert.Equal(t, "debug", cfg.Logger.Level, "env beats .env file")
	assert.Equal(t, time.Duration(0), cfg.Hunt.SettingsCacheTTL, ".env file beats default")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad duration", []string{"-access-token-duration=forever"}},
		{"bad rate", []string{"-claim-rate=lots"}},
		{"bad env", []string{"-env=test"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(append(tt.args, noEnvFile(t)))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"staging", func(c *Config) { c.App.Environment = "staging" }, false},
		{"uppercase env", func(c *Config) { c.App.Environment = "DEVELOPMENT" }, true},
		{"warn level", func(c *Config) { c.Logger.Level = "WARN" }, false},
		{"trace level", func(c *Config) { c.Logger.Level = "trace" }, true},
		{"empty data path", func(c *Config) { c.Data.Path = "" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, true},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "localhost" }, true},
		{"cache disabled", func(c *Config) { c.Hunt.SettingsCacheTTL = 0 }, false},
		{"negative cache ttl", func(c *Config) { c.Hunt.SettingsCacheTTL = -time.Second }, true},
		{"zero claim rate", func(c *Config) { c.RateLimit.ClaimPerMinute = 0 }, true},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
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

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/hunt", "/default")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "hunt"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/srv/../srv/hunt", "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/hunt", got)

	got, err = expandPath("relative", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("parses quoted values and comments", func(t *testing.T) {
		path := filepath.Join(dir, "ok.env")
		content := "# comment\n\nEGG_TEST_A=\"quoted value\"\n  EGG_TEST_B = 'single'  \n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("EGG_TEST_A")
			os.Unsetenv("EGG_TEST_B")
		})

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "quoted value", os.Getenv("EGG_TEST_A"))
		assert.Equal(t, "single", os.Getenv("EGG_TEST_B"))
	})

	t.Run("does not overwrite existing variables", func(t *testing.T) {
		t.Setenv("EGG_TEST_C", "original")
		path := filepath.Join(dir, "keep.env")
		require.NoError(t, os.WriteFile(path, []byte("EGG_TEST_C=from-file\n"), 0o600))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "original", os.Getenv("EGG_TEST_C"))
	})

	t.Run("rejects lines without equals", func(t *testing.T) {
		path := filepath.Join(dir, "bad.env")
		require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))

		assert.Error(t, loadEnvFile(path))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.ErrorIs(t, loadEnvFile(filepath.Join(dir, "nope.env")), os.ErrNotExist)
	})
}
