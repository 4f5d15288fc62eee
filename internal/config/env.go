package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadEnvFile loads environment variables from .env/.env.local files.
// Existing process environment variables are not overwritten. A missing file
// is not an error; env files are a local-development convenience.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
		return
	}
}

// applyEnvOverrides overlays CATLINK_* environment variables onto cfg.
// Environment always wins over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CATLINK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CATLINK_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CATLINK_FEED_DB"); v != "" {
		cfg.Storage.FeedDB = v
	}
	if v := os.Getenv("CATLINK_EVENTS_DB"); v != "" {
		cfg.Storage.EventsDB = v
	}
	if v := os.Getenv("CATLINK_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.APIPort = port
		}
	}
	if v := os.Getenv("CATLINK_ADMIN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.AdminPort = port
		}
	}
	if v := os.Getenv("CATLINK_NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
		cfg.Events.Enabled = true
	}
	if v := os.Getenv("CATLINK_NATS_SUBJECT"); v != "" {
		cfg.Events.Subject = v
	}
	if v := os.Getenv("CATLINK_REINDEX_INTERVAL"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			cfg.Reindex.Interval = v
		}
	}
}
