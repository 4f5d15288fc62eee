package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/catlink/internal/config"
	"git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/server/responses"
	"git.home.luguber.info/inful/catlink/internal/version"
)

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	daemon       DaemonInterface
	cfg          *config.Config
	errorAdapter *errors.HTTPErrorAdapter
}

// DaemonInterface defines the daemon methods needed by monitoring handlers.
type DaemonInterface interface {
	GetStatus() string
	GetStartTime() time.Time
	LastReindexTime() time.Time
	MentionsIndexed() int
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(daemon DaemonInterface, cfg *config.Config) *MonitoringHandlers {
	return &MonitoringHandlers{
		daemon:       daemon,
		cfg:          cfg,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.daemon.GetStartTime()).Seconds(),
	}
	health.DaemonStatus = h.daemon.GetStatus()

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}

// HandleStatus handles the daemon status endpoint.
func (h *MonitoringHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := &responses.StatusResponse{
		Status:          h.daemon.GetStatus(),
		Uptime:          time.Since(h.daemon.GetStartTime()).Seconds(),
		StartTime:       h.daemon.GetStartTime(),
		MentionsIndexed: h.daemon.MentionsIndexed(),
		Config: responses.ConfigSummary{
			APIPort:         h.cfg.HTTP.APIPort,
			AdminPort:       h.cfg.HTTP.AdminPort,
			EventsEnabled:   h.cfg.Events.Enabled,
			ReindexEnabled:  h.cfg.Reindex.Enabled,
			ReindexInterval: h.cfg.Reindex.Interval,
		},
		Timestamp: time.Now().UTC(),
	}
	if t := h.daemon.LastReindexTime(); !t.IsZero() {
		status.LastReindex = &t
	}

	if err := writeJSONPretty(w, r, http.StatusOK, status); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to encode daemon status").
			Build()
		h.errorAdapter.WriteErrorResponse(w, internalErr)
	}
}
