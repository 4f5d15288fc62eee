package daemon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/catlink/internal/config"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.FeedDB = ":memory:"
	cfg.Storage.EventsDB = ":memory:"
	cfg.Events.Enabled = false
	cfg.Reindex.Enabled = false
	return cfg
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestNewStartsStopped(t *testing.T) {
	d, err := New(memoryConfig())
	require.NoError(t, err)
	defer func() { _ = d.Stop(t.Context()) }()

	require.Equal(t, StatusStopped, d.GetStatus())
}

func TestReindexUpdatesRuntimeState(t *testing.T) {
	d, err := New(memoryConfig())
	require.NoError(t, err)
	defer func() { _ = d.Stop(t.Context()) }()

	ctx := t.Context()
	_, err = d.FeedService().CreateThread(ctx,
		"<#E/table/db.orders>", "alice", "alice",
		"watch <#E/table/db.orders/description> and <#E/table/db.orders/tags>")
	require.NoError(t, err)

	require.NoError(t, d.Reindex(ctx))

	adapter := &runtimeAdapter{daemon: d}
	require.Equal(t, 2, adapter.MentionsIndexed())
	require.False(t, adapter.LastReindexTime().IsZero())
}

func TestReloadConfigSwapsReindexSchedule(t *testing.T) {
	d, err := New(memoryConfig())
	require.NoError(t, err)
	defer func() { _ = d.Stop(t.Context()) }()

	newCfg := memoryConfig()
	newCfg.Reindex.Enabled = true
	newCfg.Reindex.Interval = "30m"
	require.NoError(t, d.ReloadConfig(t.Context(), newCfg))
	require.Equal(t, newCfg, d.GetConfig())

	// Disabling removes the job again
	offCfg := memoryConfig()
	require.NoError(t, d.ReloadConfig(t.Context(), offCfg))
}
