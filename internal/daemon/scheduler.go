package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/catlink/internal/config"
	"git.home.luguber.info/inful/catlink/internal/logfields"
)

// Scheduler wraps gocron scheduler for periodic index maintenance.
type Scheduler struct {
	scheduler gocron.Scheduler
	daemon    *Daemon
	jobID     string
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(daemon *Daemon) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		daemon:    daemon,
	}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleReindex schedules the periodic mention reindex job.
func (s *Scheduler) ScheduleReindex(interval time.Duration) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.executeReindex),
		gocron.WithName("mention-reindex"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reindex job: %w", err)
	}
	s.jobID = job.ID().String()

	slog.Info("Scheduled periodic reindex", slog.Duration("interval", interval))
	return nil
}

// Reschedule replaces the reindex job after a config reload.
func (s *Scheduler) Reschedule(cfg config.ReindexConfig) error {
	for _, job := range s.scheduler.Jobs() {
		if job.ID().String() == s.jobID {
			if err := s.scheduler.RemoveJob(job.ID()); err != nil {
				return fmt.Errorf("failed to remove reindex job: %w", err)
			}
		}
	}
	s.jobID = ""

	if !cfg.Enabled {
		slog.Info("Periodic reindex disabled")
		return nil
	}
	if err := s.ScheduleReindex(cfg.IntervalDuration()); err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

// executeReindex is called by gocron on each tick.
func (s *Scheduler) executeReindex() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	slog.Info("Executing scheduled reindex")
	if err := s.daemon.Reindex(ctx); err != nil {
		slog.Error("Scheduled reindex failed", logfields.Error(err))
	}
}
