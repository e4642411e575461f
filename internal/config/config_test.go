// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir, clears overrides and moves into an empty
// working directory so no stray .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"SHOPCHAT_API_URL", "SHOPCHAT_STORAGE_BACKEND", "SHOPCHAT_STORAGE_PATH",
		"SHOPCHAT_UI_MODE", "SHOPCHAT_LOG_LEVEL", "SHOPCHAT_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://127.0.0.1:5000/chat", cfg.API.URL)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, time.Second, cfg.API.RetryStep())
	assert.Equal(t, time.Duration(0), cfg.API.RequestTimeout())
	assert.Equal(t, time.Second, cfg.Limits.MinSendInterval())
	assert.Equal(t, 50, cfg.Limits.HistoryCapacity)
	assert.Equal(t, 1000, cfg.Limits.AnalyticsCapacity)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "auto", cfg.UI.Mode)
	assert.True(t, cfg.Network.Monitor)
	assert.Equal(t, 15*time.Second, cfg.Network.ProbeInterval())
	assert.Equal(t, "Hazme una pregunta...", cfg.Messages.Placeholder)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".shopchat", "config.toml"), `
[api]
url = "https://shop.example.com/chat"
max_retries = 5

[storage]
backend = "sqlite"

[messages]
typing = "Typing..."
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/chat", cfg.API.URL)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 1000, cfg.API.RetryStepMs, "absent keys keep defaults")
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "Typing...", cfg.Messages.Typing)
	assert.Equal(t, "Escribiendo...", Default().Messages.Typing)
	assert.Equal(t, Default().Messages.Connecting, cfg.Messages.Connecting)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".shopchat", "config.json"),
		`{"api": {"url": "http://localhost:8080/chat"}, "ui": {"mode": "plain"}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/chat", cfg.API.URL)
	assert.Equal(t, "plain", cfg.UI.Mode)
}

func TestLoad_BrokenTOMLReturnsDefaultsWithError(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".shopchat", "config.toml"), "[api\nurl=")

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().API.URL, cfg.API.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SHOPCHAT_API_URL", "https://api.example.com/chat")
	t.Setenv("SHOPCHAT_STORAGE_BACKEND", "memory")
	t.Setenv("SHOPCHAT_UI_MODE", "plain")
	t.Setenv("SHOPCHAT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/chat", cfg.API.URL)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "plain", cfg.UI.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	// An empty but set variable would win over .env.
	require.NoError(t, os.Unsetenv("SHOPCHAT_STORAGE_PATH"))
	writeFile(t, ".env", "SHOPCHAT_STORAGE_PATH=/tmp/shopchat-test.db\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shopchat-test.db", cfg.Storage.Path)
}

func TestLoad_InvalidEnvFailsValidation(t *testing.T) {
	isolate(t)
	t.Setenv("SHOPCHAT_API_URL", "ftp://example.com/chat")

	_, err := Load()
	require.Error(t, err)
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "api.url", verrs[0].Field)
}

func TestLoadFromPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "custom.toml")
	writeFile(t, tomlPath, "[limits]\nhistory_capacity = 20\n")
	cfg, err := LoadFromPath(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Limits.HistoryCapacity)

	jsonPath := filepath.Join(dir, "custom.JSON")
	writeFile(t, jsonPath, `{"network": {"monitor": false}}`)
	cfg, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.False(t, cfg.Network.Monitor)

	_, err = LoadFromPath(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty url host", func(c *Config) { c.API.URL = "http:///chat" }, "api.url"},
		{"zero retries", func(c *Config) { c.API.MaxRetries = 0 }, "api.max_retries"},
		{"too many retries", func(c *Config) { c.API.MaxRetries = 11 }, "api.max_retries"},
		{"negative step", func(c *Config) { c.API.RetryStepMs = -1 }, "api.retry_step_ms"},
		{"negative timeout", func(c *Config) { c.API.RequestTimeoutSecs = -5 }, "api.request_timeout_secs"},
		{"zero interval", func(c *Config) { c.Limits.MinSendIntervalMs = 0 }, "limits.min_send_interval_ms"},
		{"zero history", func(c *Config) { c.Limits.HistoryCapacity = 0 }, "limits.history_capacity"},
		{"zero analytics", func(c *Config) { c.Limits.AnalyticsCapacity = 0 }, "limits.analytics_capacity"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"bad mode", func(c *Config) { c.UI.Mode = "gui" }, "ui.mode"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"zero probe", func(c *Config) { c.Network.ProbeIntervalSecs = 0 }, "network.probe_interval_secs"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	c := Default()
	c.Storage.Backend = "redis"
	c.UI.Mode = "gui"
	c.Log.Level = "loud"

	err := c.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Contains(t, err.Error(), "storage.backend")
	assert.Contains(t, err.Error(), "ui.mode")
}

func TestValidate_ProbeIgnoredWhenMonitorOff(t *testing.T) {
	c := Default()
	c.Network.Monitor = false
	c.Network.ProbeIntervalSecs = -1
	assert.NoError(t, c.Validate())
}

func TestSetDefaults(t *testing.T) {
	c := &Config{}
	c.API.MaxRetries = -2
	c.SetDefaults()

	assert.Equal(t, Default().API.URL, c.API.URL)
	assert.Equal(t, -2, c.API.MaxRetries, "negative values are left for Validate")
	assert.Equal(t, Default().Messages, c.Messages)
	assert.Equal(t, "file", c.Storage.Backend)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.API.URL = "https://shop.example.com/chat"
	cfg.Storage.Backend = "memory"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# shopchat configuration file")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestTOML(t *testing.T) {
	out, err := Default().TOML()
	require.NoError(t, err)
	assert.Contains(t, out, "[api]")
	assert.Contains(t, out, `url = "http://127.0.0.1:5000/chat"`)
}

func TestGet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("api.max_retries")
	require.NoError(t, err)
	assert.Equal(t, 3, val)

	val, err = cfg.Get("messages.not-understood")
	require.NoError(t, err)
	assert.Equal(t, cfg.Messages.NotUnderstood, val)

	val, err = cfg.Get("network.monitor")
	require.NoError(t, err)
	assert.Equal(t, "true", FormatValue(val))

	val, err = cfg.Get("storage")
	require.NoError(t, err)
	assert.Contains(t, FormatValue(val), `backend = "file"`)

	_, err = cfg.Get("invalid.key")
	assert.Error(t, err)
	_, err = cfg.Get("api.url.host")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestMessagesExchange(t *testing.T) {
	m := Default().Messages
	m.ServerError = "boom"
	ex := m.Exchange()
	assert.Equal(t, "boom", ex.ServerError)
	assert.Equal(t, m.ConnectionRestored, ex.ConnectionRestored)
}
