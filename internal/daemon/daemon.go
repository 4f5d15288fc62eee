// Package daemon runs the catlink serve runtime: stores, event publishing,
// HTTP servers, config hot-reload, and scheduled index maintenance.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/catlink/internal/changetracker"
	"git.home.luguber.info/inful/catlink/internal/config"
	"git.home.luguber.info/inful/catlink/internal/feed"
	"git.home.luguber.info/inful/catlink/internal/logfields"
	"git.home.luguber.info/inful/catlink/internal/metrics"
	"git.home.luguber.info/inful/catlink/internal/server/httpserver"
)

// Status represents the current state of the daemon
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Daemon represents the main daemon service
type Daemon struct {
	config         *config.Config
	configFilePath string
	status         atomic.Value // Status
	startTime      time.Time
	stopChan       chan struct{}
	mu             sync.RWMutex

	// Core components
	feedStore     *feed.SQLiteStore
	feedService   *feed.Service
	publisher     *feed.NATSPublisher
	changeStore   *changetracker.SQLiteStore
	changeLog     *changetracker.ChangeLog
	recorder      *metrics.PrometheusRecorder
	registry      *prom.Registry
	httpServer    *httpserver.Server
	scheduler     *Scheduler
	configWatcher *ConfigWatcher

	// Runtime state
	lastReindex     atomic.Value // time.Time
	mentionsIndexed atomic.Int64
}

// New creates a new daemon instance.
func New(cfg *config.Config) (*Daemon, error) {
	return NewWithConfigFile(cfg, "")
}

// NewWithConfigFile creates a new daemon instance with config file watching.
func NewWithConfigFile(cfg *config.Config, configFilePath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		config:         cfg,
		configFilePath: configFilePath,
		stopChan:       make(chan struct{}),
		registry:       prom.NewRegistry(),
	}
	d.status.Store(StatusStopped)
	d.lastReindex.Store(time.Time{})

	d.recorder = metrics.NewPrometheusRecorder(d.registry)

	feedStore, err := feed.NewSQLiteStore(cfg.Storage.FeedDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed store: %w", err)
	}
	d.feedStore = feedStore

	changeStore, err := changetracker.NewSQLiteStore(cfg.Storage.EventsDB)
	if err != nil {
		_ = feedStore.Close()
		return nil, fmt.Errorf("failed to open change event store: %w", err)
	}
	d.changeStore = changeStore
	d.changeLog = changetracker.NewChangeLog(changeStore)

	if cfg.Events.Enabled {
		publisher, err := feed.NewNATSPublisher(&cfg.Events)
		if err != nil {
			_ = feedStore.Close()
			_ = changeStore.Close()
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		d.publisher = publisher
	}

	var pub feed.Publisher
	if d.publisher != nil {
		pub = d.publisher
	}
	d.feedService = feed.NewService(feedStore, pub, d.recorder)

	d.httpServer = httpserver.New(cfg, &runtimeAdapter{daemon: d}, d.feedService, d.changeLog, httpserver.Options{
		PrometheusHandler: metrics.HTTPHandler(d.registry),
	})

	scheduler, err := NewScheduler(d)
	if err != nil {
		_ = feedStore.Close()
		_ = changeStore.Close()
		return nil, err
	}
	d.scheduler = scheduler

	return d, nil
}

// runtimeAdapter exposes daemon state to the HTTP handlers.
type runtimeAdapter struct {
	daemon *Daemon
}

func (a *runtimeAdapter) GetStatus() string        { return string(a.daemon.GetStatus()) }
func (a *runtimeAdapter) GetStartTime() time.Time  { return a.daemon.startTime }
func (a *runtimeAdapter) MentionsIndexed() int     { return int(a.daemon.mentionsIndexed.Load()) }
func (a *runtimeAdapter) LastReindexTime() time.Time {
	if t, ok := a.daemon.lastReindex.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Start brings the daemon to running state. It blocks only for startup, not
// for the lifetime of the daemon; cancel ctx or call Stop to shut down.
func (d *Daemon) Start(ctx context.Context) error {
	if d.GetStatus() != StatusStopped {
		return fmt.Errorf("daemon is not stopped (status %s)", d.GetStatus())
	}
	d.status.Store(StatusStarting)
	d.startTime = time.Now()

	slog.Info("Starting catlink daemon")

	if err := d.changeLog.Rebuild(ctx); err != nil {
		d.status.Store(StatusError)
		return fmt.Errorf("failed to rebuild change log projection: %w", err)
	}

	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusError)
		return err
	}

	if d.config.Reindex.Enabled {
		if err := d.scheduler.ScheduleReindex(d.config.Reindex.IntervalDuration()); err != nil {
			d.status.Store(StatusError)
			return err
		}
		d.scheduler.Start(ctx)
	}

	if d.configFilePath != "" {
		watcher, err := NewConfigWatcher(d.configFilePath, d)
		if err != nil {
			slog.Warn("Config watcher unavailable, hot-reload disabled", logfields.Error(err))
		} else {
			d.configWatcher = watcher
			if err := watcher.Start(ctx); err != nil {
				slog.Warn("Failed to start config watcher", logfields.Error(err))
				d.configWatcher = nil
			}
		}
	}

	d.status.Store(StatusRunning)
	slog.Info("Daemon started",
		slog.Int("api_port", d.config.HTTP.APIPort),
		slog.Int("admin_port", d.config.HTTP.AdminPort))
	return nil
}

// Stop gracefully shuts down all components.
func (d *Daemon) Stop(ctx context.Context) error {
	current := d.GetStatus()
	if current == StatusStopped || current == StatusStopping {
		return nil
	}
	d.status.Store(StatusStopping)
	slog.Info("Stopping catlink daemon")

	var errs []error

	if d.configWatcher != nil {
		if err := d.configWatcher.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.changeStore != nil {
		if err := d.changeStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.feedStore != nil {
		if err := d.feedStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	close(d.stopChan)
	d.status.Store(StatusStopped)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	slog.Info("Daemon stopped")
	return nil
}

// Reindex rebuilds the mention index and the change log projection. It is
// called by the scheduler and may be triggered manually.
func (d *Daemon) Reindex(ctx context.Context) error {
	total, err := d.feedService.Reindex(ctx)
	if err != nil {
		return err
	}
	d.mentionsIndexed.Store(int64(total))
	d.lastReindex.Store(time.Now().UTC())

	if err := d.changeLog.Rebuild(ctx); err != nil {
		return err
	}
	return nil
}

// ReloadConfig applies a changed configuration. Only settings that can take
// effect without a restart are applied: log level and the reindex schedule.
func (d *Daemon) ReloadConfig(_ context.Context, newConfig *config.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	old := d.config

	if newConfig.Logging.Level != old.Logging.Level {
		slog.SetLogLoggerLevel(slogLevel(config.NormalizeLogLevel(newConfig.Logging.Level)))
		slog.Info("Log level changed", "level", newConfig.Logging.Level)
	}

	if newConfig.Reindex != old.Reindex {
		if err := d.scheduler.Reschedule(newConfig.Reindex); err != nil {
			return err
		}
	}

	d.config = newConfig
	return nil
}

// slogLevel maps a normalized level string to its slog.Level.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConfig returns the active configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// GetStatus returns the daemon's lifecycle status as a string.
func (d *Daemon) GetStatus() Status {
	if s, ok := d.status.Load().(Status); ok {
		return s
	}
	return StatusStopped
}

// FeedService exposes the feed service for CLI subcommands sharing a daemon
// configuration.
func (d *Daemon) FeedService() *feed.Service { return d.feedService }

// ChangeLog exposes the change log projection.
func (d *Daemon) ChangeLog() *changetracker.ChangeLog { return d.changeLog }
