// Package config loads and validates catlink configuration from YAML,
// an optional .env file, and CATLINK_* environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
)

// Config is the root configuration for the catlink daemon and CLI.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Events  EventsConfig  `yaml:"events"`
	Reindex ReindexConfig `yaml:"reindex"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// StorageConfig holds SQLite database locations. ":memory:" is accepted for
// ephemeral runs and tests.
type StorageConfig struct {
	FeedDB   string `yaml:"feed_db"`
	EventsDB string `yaml:"events_db"`
}

// HTTPConfig holds listen ports for the API and admin servers.
type HTTPConfig struct {
	APIPort   int `yaml:"api_port"`
	AdminPort int `yaml:"admin_port"`
}

// EventsConfig controls mention event publishing over NATS JetStream.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ReindexConfig controls the scheduled mention index rebuild.
type ReindexConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"` // Go duration string, e.g. "6h"
}

// IntervalDuration parses the configured interval, falling back to the
// default when unset or unparseable. Validate reports the parse error; this
// accessor stays total so callers can schedule without re-checking.
func (r ReindexConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(r.Interval)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}

// Default returns a Config populated with defaults suitable for local use.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{FeedDB: "./catlink-feed.db", EventsDB: "./catlink-events.db"},
		HTTP:    HTTPConfig{APIPort: 8585, AdminPort: 8586},
		Events:  EventsConfig{Enabled: false, NATSURL: "nats://localhost:4222", Subject: "catlink.mentions"},
		Reindex: ReindexConfig{Enabled: true, Interval: "6h"},
	}
}

// Load reads the configuration file at path, overlays environment variables,
// and validates the result. A missing file is an error; use LoadOrDefault for
// commands that can run without one.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, cerrors.ConfigNotFound(path).Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal, "failed to read configuration file").
			WithContext("path", path).Build()
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal, "failed to parse configuration file").
			WithContext("path", path).Build()
	}

	loadEnvFile()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults (plus env
// overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		loadEnvFile()
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Storage.FeedDB == "" {
		return cerrors.ConfigRequired("storage.feed_db").Build()
	}
	if c.Storage.EventsDB == "" {
		return cerrors.ConfigRequired("storage.events_db").Build()
	}
	if c.HTTP.APIPort <= 0 || c.HTTP.APIPort > 65535 {
		return cerrors.ValidationFailed("http.api_port", fmt.Sprintf("port %d out of range", c.HTTP.APIPort)).Build()
	}
	if c.HTTP.AdminPort <= 0 || c.HTTP.AdminPort > 65535 {
		return cerrors.ValidationFailed("http.admin_port", fmt.Sprintf("port %d out of range", c.HTTP.AdminPort)).Build()
	}
	if c.HTTP.APIPort == c.HTTP.AdminPort {
		return cerrors.ValidationFailed("http.admin_port", "api and admin ports must differ").Build()
	}
	if c.Events.Enabled {
		if c.Events.NATSURL == "" {
			return cerrors.ConfigRequired("events.nats_url").Build()
		}
		if c.Events.Subject == "" {
			return cerrors.ConfigRequired("events.subject").Build()
		}
	}
	if c.Reindex.Enabled {
		d, err := time.ParseDuration(c.Reindex.Interval)
		if err != nil {
			return cerrors.ValidationFailed("reindex.interval", "not a valid duration").Build()
		}
		if d < time.Minute {
			return cerrors.ValidationFailed("reindex.interval", "must be at least one minute").Build()
		}
	}
	return nil
}

// NormalizeLogLevel maps a raw level string to a known value, defaulting to info.
func NormalizeLogLevel(raw string) string {
	switch raw {
	case "debug", "info", "warn", "error":
		return raw
	default:
		return "info"
	}
}
