// Package httpserver wires the catlink API and admin HTTP servers.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/catlink/internal/changetracker"
	"git.home.luguber.info/inful/catlink/internal/config"
	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
	"git.home.luguber.info/inful/catlink/internal/feed"
	"git.home.luguber.info/inful/catlink/internal/server/handlers"
	smw "git.home.luguber.info/inful/catlink/internal/server/middleware"
)

// Server manages the API and admin HTTP endpoints.
type Server struct {
	apiServer   *http.Server
	adminServer *http.Server
	cfg         *config.Config
	opts        Options

	// Handler modules
	linkHandlers       *handlers.LinkHandlers
	feedHandlers       *handlers.FeedHandlers
	changeHandlers     *handlers.ChangeHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(cfg *config.Config, runtime Runtime, feedService *feed.Service, changeLog *changetracker.ChangeLog, opts Options) *Server {
	s := &Server{
		cfg:  cfg,
		opts: opts,
	}

	s.linkHandlers = handlers.NewLinkHandlers()
	s.feedHandlers = handlers.NewFeedHandlers(feedService)
	s.changeHandlers = handlers.NewChangeHandlers(changeLog)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(runtime, cfg)

	s.mchain = smw.Chain(slog.Default(), cerrors.NewHTTPErrorAdapter(slog.Default()))

	return s
}

// Start initializes and starts both HTTP servers.
func (s *Server) Start(ctx context.Context) error {
	// Pre-bind both ports so we can fail fast and surface aggregate errors
	// instead of logging independent 'address already in use' lines after
	// partial initialization.
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{
		{name: "api", port: s.cfg.HTTP.APIPort},
		{name: "admin", port: s.cfg.HTTP.AdminPort},
	}
	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		addr := fmt.Sprintf(":%d", binds[i].port)
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		// Close any successful listeners before returning
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", errors.Join(bindErrs...))
	}

	if err := s.startAPIServerWithListener(ctx, binds[0].ln); err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}
	if err := s.startAdminServerWithListener(ctx, binds[1].ln); err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	slog.Info("HTTP servers started",
		slog.Int("api_port", s.cfg.HTTP.APIPort),
		slog.Int("admin_port", s.cfg.HTTP.AdminPort))
	return nil
}

// Stop gracefully shuts down both HTTP servers.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	// Stop servers in reverse order
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	if s.apiServer != nil {
		if err := s.apiServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	slog.Info("HTTP servers stopped")
	return nil
}

func (s *Server) startAPIServerWithListener(_ context.Context, ln net.Listener) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/links/parse", s.linkHandlers.HandleParse)
	mux.HandleFunc("POST /api/v1/links/extract", s.linkHandlers.HandleExtract)

	mux.HandleFunc("POST /api/v1/feed", s.feedHandlers.HandleCreateThread)
	mux.HandleFunc("GET /api/v1/feed", s.feedHandlers.HandleListThreads)
	mux.HandleFunc("GET /api/v1/feed/{id}", s.feedHandlers.HandleGetThread)
	mux.HandleFunc("POST /api/v1/feed/{id}/posts", s.feedHandlers.HandleAddPost)

	mux.HandleFunc("GET /api/v1/changes", s.changeHandlers.HandleChanges)

	s.apiServer = &http.Server{Handler: s.mchain(mux), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	return s.startServerWithListener("api", s.apiServer, ln)
}

func (s *Server) startAdminServerWithListener(_ context.Context, ln net.Listener) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck) // Kubernetes-style alias
	mux.HandleFunc("GET /api/status", s.monitoringHandlers.HandleStatus)

	if s.opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", s.opts.PrometheusHandler)
	}

	s.adminServer = &http.Server{Handler: s.mchain(mux), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	return s.startServerWithListener("admin", s.adminServer, ln)
}

// startServerWithListener launches an http.Server on a pre-bound listener or binds itself.
// It standardizes goroutine startup and error logging across server types.
func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) error {
	go func() {
		var err error
		if ln != nil {
			err = srv.Serve(ln)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s server error", kind), "error", err)
		}
	}()
	return nil
}
