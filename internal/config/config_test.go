package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 8585, cfg.HTTP.APIPort)
	require.Equal(t, 8586, cfg.HTTP.AdminPort)
	require.Equal(t, "catlink.mentions", cfg.Events.Subject)
	require.Equal(t, 6*time.Hour, cfg.Reindex.IntervalDuration())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, cerrors.IsCategory(err, cerrors.CategoryConfig))
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CATLINK_LOG_LEVEL", "warn")
	t.Setenv("CATLINK_API_PORT", "9000")
	t.Setenv("CATLINK_NATS_URL", "nats://queue:4222")

	path := writeConfig(t, "http:\n  api_port: 8080\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, 9000, cfg.HTTP.APIPort)
	require.True(t, cfg.Events.Enabled, "setting a NATS URL enables events")
	require.Equal(t, "nats://queue:4222", cfg.Events.NATSURL)
}

func TestValidateRejectsPortCollision(t *testing.T) {
	cfg := Default()
	cfg.HTTP.AdminPort = cfg.HTTP.APIPort
	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, cerrors.IsCategory(err, cerrors.CategoryValidation))
}

func TestValidateRejectsShortReindexInterval(t *testing.T) {
	cfg := Default()
	cfg.Reindex.Interval = "5s"
	require.Error(t, cfg.Validate())

	cfg.Reindex.Interval = "not-a-duration"
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresEventSubject(t *testing.T) {
	cfg := Default()
	cfg.Events.Enabled = true
	cfg.Events.Subject = ""
	require.Error(t, cfg.Validate())
}

func TestNormalizeLogLevel(t *testing.T) {
	require.Equal(t, "debug", NormalizeLogLevel("debug"))
	require.Equal(t, "info", NormalizeLogLevel("bogus"))
}
