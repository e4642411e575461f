// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/chatapi"
	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/netstatus"
	"github.com/jeranaias/shopchat/internal/ratelimit"
	"github.com/jeranaias/shopchat/internal/storage"
	"github.com/jeranaias/shopchat/internal/telemetry"
	"github.com/jeranaias/shopchat/internal/util"
)

// CurrentVersion is the config schema version written by SaveTOML.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete shopchat configuration.
type Config struct {
	Version  string         `toml:"version" json:"version"`
	API      APIConfig      `toml:"api" json:"api"`
	Limits   LimitsConfig   `toml:"limits" json:"limits"`
	Storage  StorageConfig  `toml:"storage" json:"storage"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Network  NetworkConfig  `toml:"network" json:"network"`
	Log      LogConfig      `toml:"log" json:"log"`
	Messages MessagesConfig `toml:"messages" json:"messages"`
}

// APIConfig describes the chat backend.
type APIConfig struct {
	// URL is the chat endpoint (POST)
	URL string `toml:"url" json:"url"`

	// MaxRetries is the total number of attempts per message
	MaxRetries int `toml:"max_retries" json:"max_retries"`

	// RetryStepMs is the linear backoff increment in milliseconds
	RetryStepMs int `toml:"retry_step_ms" json:"retry_step_ms"`

	// RequestTimeoutSecs bounds each attempt; 0 means no timeout
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
}

// LimitsConfig holds the widget's fixed bounds.
type LimitsConfig struct {
	MinSendIntervalMs int `toml:"min_send_interval_ms" json:"min_send_interval_ms"`
	HistoryCapacity   int `toml:"history_capacity" json:"history_capacity"`
	AnalyticsCapacity int `toml:"analytics_capacity" json:"analytics_capacity"`
}

// StorageConfig selects the local store.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory"
	Backend string `toml:"backend" json:"backend"`

	// Path overrides the default location under ~/.shopchat
	Path string `toml:"path" json:"path"`
}

// UIConfig selects the presentation.
type UIConfig struct {
	// Mode is "auto", "tui" or "plain"
	Mode string `toml:"mode" json:"mode"`

	// Theme is "auto", "dark", "light" or "notty"
	Theme string `toml:"theme" json:"theme"`
}

// NetworkConfig controls the connectivity monitor.
type NetworkConfig struct {
	Monitor           bool `toml:"monitor" json:"monitor"`
	ProbeIntervalSecs int  `toml:"probe_interval_secs" json:"probe_interval_secs"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a zerolog level name
	Level string `toml:"level" json:"level"`

	// File receives TUI logs; defaults to ~/.shopchat/shopchat.log
	File string `toml:"file" json:"file"`
}

// MessagesConfig holds the fixed user-visible strings.
type MessagesConfig struct {
	Placeholder        string `toml:"placeholder" json:"placeholder"`
	Typing             string `toml:"typing" json:"typing"`
	Connecting         string `toml:"connecting" json:"connecting"`
	NotUnderstood      string `toml:"not_understood" json:"not_understood"`
	ServerError        string `toml:"server_error" json:"server_error"`
	GreetingFailed     string `toml:"greeting_failed" json:"greeting_failed"`
	UnexpectedError    string `toml:"unexpected_error" json:"unexpected_error"`
	ConnectionLost     string `toml:"connection_lost" json:"connection_lost"`
	ConnectionRestored string `toml:"connection_restored" json:"connection_restored"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	m := exchange.DefaultMessages()
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			URL:                chatapi.DefaultURL,
			MaxRetries:         chatapi.DefaultMaxRetries,
			RetryStepMs:        int(chatapi.DefaultRetryStep / time.Millisecond),
			RequestTimeoutSecs: 0,
		},
		Limits: LimitsConfig{
			MinSendIntervalMs: int(ratelimit.DefaultInterval / time.Millisecond),
			HistoryCapacity:   storage.DefaultHistoryCapacity,
			AnalyticsCapacity: telemetry.DefaultCapacity,
		},
		Storage: StorageConfig{
			Backend: storage.BackendFile,
		},
		UI: UIConfig{
			Mode:  "auto",
			Theme: "auto",
		},
		Network: NetworkConfig{
			Monitor:           true,
			ProbeIntervalSecs: int(netstatus.DefaultProbeInterval / time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
		Messages: MessagesConfig{
			Placeholder:        m.Placeholder,
			Typing:             m.Typing,
			Connecting:         m.Connecting,
			NotUnderstood:      m.NotUnderstood,
			ServerError:        m.ServerError,
			GreetingFailed:     m.GreetingFailed,
			UnexpectedError:    m.UnexpectedError,
			ConnectionLost:     m.ConnectionLost,
			ConnectionRestored: m.ConnectionRestored,
		},
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RetryStep returns the backoff increment.
func (a APIConfig) RetryStep() time.Duration {
	return time.Duration(a.RetryStepMs) * time.Millisecond
}

// RequestTimeout returns the per-attempt timeout (0 = none).
func (a APIConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSecs) * time.Second
}

// MinSendInterval returns the rate-limit window.
func (l LimitsConfig) MinSendInterval() time.Duration {
	return time.Duration(l.MinSendIntervalMs) * time.Millisecond
}

// ProbeInterval returns the connectivity probe spacing.
func (n NetworkConfig) ProbeInterval() time.Duration {
	return time.Duration(n.ProbeIntervalSecs) * time.Second
}

// Exchange converts the strings for the exchange controller.
func (m MessagesConfig) Exchange() exchange.Messages {
	return exchange.Messages{
		Placeholder:        m.Placeholder,
		Typing:             m.Typing,
		Connecting:         m.Connecting,
		NotUnderstood:      m.NotUnderstood,
		ServerError:        m.ServerError,
		GreetingFailed:     m.GreetingFailed,
		UnexpectedError:    m.UnexpectedError,
		ConnectionLost:     m.ConnectionLost,
		ConnectionRestored: m.ConnectionRestored,
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the shopchat state directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shopchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns ~/.shopchat/shopchat.log.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shopchat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.shopchat/config.toml, falling back to config.json and then to
// the defaults. A .env file in the working directory and the SHOPCHAT_*
// environment variables are applied on top. If a config file exists but cannot
// be read, the defaults are returned together with the load error.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil && fileExists(tomlPath) {
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		} else {
			return finalize(cfg)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil && fileExists(jsonPath) {
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			cfg = Default()
		} else {
			return finalize(cfg)
		}
	}

	cfg, err := finalize(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads a specific file. Files ending in .json are read as JSON,
// everything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep their
// current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func finalize(cfg *Config) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path.
// SECURITY: Config files are written 0600 (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents a torn file on crash.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# shopchat configuration file\n")
	buf.WriteString("# Generated by `shopchat config init` - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// TOML renders cfg as TOML text.
func (c *Config) TOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.String(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if err := netstatus.ValidateEndpoint(c.API.URL); err != nil {
		add("api.url", "invalid endpoint '%s': %v", c.API.URL, err)
	}
	if c.API.MaxRetries < 1 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be between 1 and 10, got %d", c.API.MaxRetries)
	}
	if c.API.RetryStepMs <= 0 {
		add("api.retry_step_ms", "must be positive, got %d", c.API.RetryStepMs)
	}
	if c.API.RequestTimeoutSecs < 0 {
		add("api.request_timeout_secs", "must not be negative, got %d", c.API.RequestTimeoutSecs)
	}

	if c.Limits.MinSendIntervalMs <= 0 {
		add("limits.min_send_interval_ms", "must be positive, got %d", c.Limits.MinSendIntervalMs)
	}
	if c.Limits.HistoryCapacity <= 0 {
		add("limits.history_capacity", "must be positive, got %d", c.Limits.HistoryCapacity)
	}
	if c.Limits.AnalyticsCapacity <= 0 {
		add("limits.analytics_capacity", "must be positive, got %d", c.Limits.AnalyticsCapacity)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		add("storage.backend", "invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend)
	}

	switch strings.ToLower(c.UI.Mode) {
	case "auto", "tui", "plain":
	default:
		add("ui.mode", "invalid mode '%s', must be one of: auto, tui, plain", c.UI.Mode)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light", "notty":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme)
	}

	if c.Network.Monitor && c.Network.ProbeIntervalSecs <= 0 {
		add("network.probe_interval_secs", "must be positive when monitoring, got %d", c.Network.ProbeIntervalSecs)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		add("log.level", "invalid level '%s'", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty strings and zero numbers with defaults. Negative
// numbers are left for Validate to reject.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if strings.TrimSpace(c.API.URL) == "" {
		c.API.URL = d.API.URL
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = d.API.MaxRetries
	}
	if c.API.RetryStepMs == 0 {
		c.API.RetryStepMs = d.API.RetryStepMs
	}
	if c.Limits.MinSendIntervalMs == 0 {
		c.Limits.MinSendIntervalMs = d.Limits.MinSendIntervalMs
	}
	if c.Limits.HistoryCapacity == 0 {
		c.Limits.HistoryCapacity = d.Limits.HistoryCapacity
	}
	if c.Limits.AnalyticsCapacity == 0 {
		c.Limits.AnalyticsCapacity = d.Limits.AnalyticsCapacity
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.UI.Mode == "" {
		c.UI.Mode = d.UI.Mode
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Network.ProbeIntervalSecs == 0 {
		c.Network.ProbeIntervalSecs = d.Network.ProbeIntervalSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}

	m := &c.Messages
	dm := d.Messages
	for _, pair := range []struct {
		dst *string
		def string
	}{
		{&m.Placeholder, dm.Placeholder},
		{&m.Typing, dm.Typing},
		{&m.Connecting, dm.Connecting},
		{&m.NotUnderstood, dm.NotUnderstood},
		{&m.ServerError, dm.ServerError},
		{&m.GreetingFailed, dm.GreetingFailed},
		{&m.UnexpectedError, dm.UnexpectedError},
		{&m.ConnectionLost, dm.ConnectionLost},
		{&m.ConnectionRestored, dm.ConnectionRestored},
	} {
		if *pair.dst == "" {
			*pair.dst = pair.def
		}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - SHOPCHAT_API_URL: overrides api.url
//   - SHOPCHAT_STORAGE_BACKEND: overrides storage.backend
//   - SHOPCHAT_STORAGE_PATH: overrides storage.path
//   - SHOPCHAT_UI_MODE: overrides ui.mode
//   - SHOPCHAT_LOG_LEVEL: overrides log.level
//   - SHOPCHAT_LOG_FILE: overrides log.file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SHOPCHAT_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("SHOPCHAT_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SHOPCHAT_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SHOPCHAT_UI_MODE"); v != "" {
		c.UI.Mode = v
	}
	if v := os.Getenv("SHOPCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SHOPCHAT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a value using dot notation (e.g., "api.max_retries").
func (c *Config) Get(key string) (any, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// FormatValue renders a value returned by Get for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(val); err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimRight(buf.String(), "\n")
	}
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
