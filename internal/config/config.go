// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for slushie.
//
// Configuration sources, later ones winning:
//   - Built-in defaults
//   - ~/.slushie/config.toml (or the path given with --config)
//   - .env files in the working directory and ~/.slushie
//   - SLUSHIE_* environment variables
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/slushie-cfo/internal/assistant"
	"github.com/jeranaias/slushie-cfo/internal/events"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete slushie configuration.
type Config struct {
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`
	Payments  PaymentsConfig  `toml:"payments" json:"payments"`
	Events    EventsConfig    `toml:"events" json:"events"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// AssistantConfig configures the chat assistant and its Ollama backend.
type AssistantConfig struct {
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`
	Model     string `toml:"model" json:"model"`

	// Context and Tone name entries of assistant.Contexts and assistant.Tones
	Context    string `toml:"context" json:"context"`
	Tone       string `toml:"tone" json:"tone"`
	Background string `toml:"background" json:"background"`

	// RequestsPerMinute throttles completion calls; 0 disables the limit
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`

	// TimeoutSecs bounds a single streamed reply
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// PaymentsConfig configures the payment feed.
type PaymentsConfig struct {
	Provider            string `toml:"provider" json:"provider"`
	SyncIntervalMinutes int    `toml:"sync_interval_minutes" json:"sync_interval_minutes"`

	// AutoSync turns auto-sync on right after /venmo connect
	AutoSync bool `toml:"auto_sync" json:"auto_sync"`
}

// EventsConfig configures ledger change events.
type EventsConfig struct {
	Enabled bool     `toml:"enabled" json:"enabled"`
	Brokers []string `toml:"brokers" json:"brokers"`
	Topic   string   `toml:"topic" json:"topic"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `toml:"level" json:"level"`
	File    string `toml:"file" json:"file"`
	Journal bool   `toml:"journal" json:"journal"`
}

// UIConfig configures terminal presentation.
type UIConfig struct {
	Markdown bool `toml:"markdown" json:"markdown"`
	NoColor  bool `toml:"no_color" json:"no_color"`
}

// ProviderStub is the only built-in payment provider.
const ProviderStub = "stub"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Assistant: AssistantConfig{
			OllamaURL:         "http://127.0.0.1:11434",
			Model:             "llama3.2",
			Context:           assistant.Contexts[0],
			Tone:              assistant.Tones[0],
			RequestsPerMinute: 20,
			TimeoutSecs:       120,
		},
		Payments: PaymentsConfig{
			Provider:            ProviderStub,
			SyncIntervalMinutes: ledger.DefaultSyncInterval,
		},
		Events: EventsConfig{
			Topic: events.DefaultTopic,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		UI: UIConfig{
			Markdown: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the slushie configuration directory. SLUSHIE_HOME
// overrides the default of ~/.slushie.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SLUSHIE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".slushie"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the default config file if it exists. A missing file yields
// the defaults with environment overrides applied.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// ErrInvalidConfig is wrapped by errors for config files that cannot be
// decoded or contain unknown keys.
var ErrInvalidConfig = errors.New("invalid config")

// LoadTOML decodes path over cfg. Keys absent from the file keep cfg's values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%w: failed to decode TOML file: %w", ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys: %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env from the working directory and the config
// directory. Variables already set in the environment are kept.
func LoadDotEnv() error {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}

	var existing []string
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Assistant.OllamaURL == "" {
		c.Assistant.OllamaURL = defaults.Assistant.OllamaURL
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = defaults.Assistant.Model
	}
	if c.Assistant.Context == "" {
		c.Assistant.Context = defaults.Assistant.Context
	}
	if c.Assistant.Tone == "" {
		c.Assistant.Tone = defaults.Assistant.Tone
	}
	if c.Assistant.TimeoutSecs == 0 {
		c.Assistant.TimeoutSecs = defaults.Assistant.TimeoutSecs
	}
	if c.Payments.Provider == "" {
		c.Payments.Provider = defaults.Payments.Provider
	}
	if c.Payments.SyncIntervalMinutes == 0 {
		c.Payments.SyncIntervalMinutes = defaults.Payments.SyncIntervalMinutes
	}
	if c.Events.Topic == "" {
		c.Events.Topic = defaults.Events.Topic
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SLUSHIE_* environment variables:
//   - SLUSHIE_OLLAMA_URL, SLUSHIE_MODEL, SLUSHIE_CONTEXT, SLUSHIE_TONE
//   - SLUSHIE_AUTO_SYNC, SLUSHIE_SYNC_INTERVAL
//   - SLUSHIE_EVENTS, SLUSHIE_KAFKA_BROKERS (comma separated), SLUSHIE_KAFKA_TOPIC
//   - SLUSHIE_LOG_LEVEL, SLUSHIE_LOG_FILE, SLUSHIE_LOG_JOURNAL
//   - SLUSHIE_NO_COLOR and NO_COLOR
func (c *Config) ApplyEnvOverrides() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = parseBool(v)
		}
	}

	setString("SLUSHIE_OLLAMA_URL", &c.Assistant.OllamaURL)
	setString("SLUSHIE_MODEL", &c.Assistant.Model)
	setString("SLUSHIE_CONTEXT", &c.Assistant.Context)
	setString("SLUSHIE_TONE", &c.Assistant.Tone)

	setBool("SLUSHIE_AUTO_SYNC", &c.Payments.AutoSync)
	if v := os.Getenv("SLUSHIE_SYNC_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Payments.SyncIntervalMinutes = n
		}
	}

	setBool("SLUSHIE_EVENTS", &c.Events.Enabled)
	if v := os.Getenv("SLUSHIE_KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = splitList(v)
	}
	setString("SLUSHIE_KAFKA_TOPIC", &c.Events.Topic)

	setString("SLUSHIE_LOG_LEVEL", &c.Logging.Level)
	setString("SLUSHIE_LOG_FILE", &c.Logging.File)
	setBool("SLUSHIE_LOG_JOURNAL", &c.Logging.Journal)

	// NO_COLOR only needs to be present (https://no-color.org).
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.NoColor = true
	}
	setBool("SLUSHIE_NO_COLOR", &c.UI.NoColor)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# slushie configuration file\n")
	buf.WriteString("# Generated by slushie config - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Assistant
	if u, err := url.Parse(c.Assistant.OllamaURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("assistant.ollama_url", "invalid URL '%s', must be http(s)://host[:port]", c.Assistant.OllamaURL)
	}
	if _, err := assistant.Resolve(c.Assistant.Context, assistant.Contexts); err != nil {
		add("assistant.context", "%v", err)
	}
	if _, err := assistant.Resolve(c.Assistant.Tone, assistant.Tones); err != nil {
		add("assistant.tone", "%v", err)
	}
	if c.Assistant.RequestsPerMinute < 0 {
		add("assistant.requests_per_minute", "must not be negative, got %d", c.Assistant.RequestsPerMinute)
	}
	if c.Assistant.TimeoutSecs < 0 {
		add("assistant.timeout_secs", "must not be negative, got %d", c.Assistant.TimeoutSecs)
	}

	// Payments
	if c.Payments.Provider != ProviderStub {
		add("payments.provider", "unknown provider '%s', must be: %s", c.Payments.Provider, ProviderStub)
	}
	if !slices.Contains(ledger.SyncIntervals, c.Payments.SyncIntervalMinutes) {
		add("payments.sync_interval_minutes", "must be one of %v, got %d", ledger.SyncIntervals, c.Payments.SyncIntervalMinutes)
	}

	// Events
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		add("events.brokers", "at least one broker is required when events are enabled")
	}

	// Logging
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level", "invalid level '%s', must be one of: %s", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value by its TOML key path (e.g., "assistant.model").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by its TOML key path, converting from string as needed.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer value %q", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean value %q", key, value)
		}
		field.SetBool(b)
	case reflect.Slice:
		field.Set(reflect.ValueOf(splitList(value)))
	default:
		return fmt.Errorf("cannot set field: %s", key)
	}
	return nil
}

// lookup walks the struct by toml tag names.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return reflect.Value{}, fmt.Errorf("invalid key %q, want section.name", key)
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return v, nil
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// AllKeys returns every configuration key in dot notation.
func AllKeys() []string {
	var keys []string
	root := reflect.TypeOf(Config{})
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// String returns the config as indented JSON for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
