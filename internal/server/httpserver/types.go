package httpserver

import (
	"net/http"
	"time"
)

// Runtime is the minimal interface required by shared HTTP handlers.
// It intentionally matches the interfaces in internal/server/handlers.
type Runtime interface {
	GetStatus() string
	GetStartTime() time.Time
	LastReindexTime() time.Time
	MentionsIndexed() int
}

// Options configures additional server wiring that is runtime-specific.
type Options struct {
	// Optional: Prometheus metrics endpoint on the admin server.
	PrometheusHandler http.Handler
}
