// Package reminder wires up the cron job that periodically looks for stalled
// applications and publishes a follow-up event for each.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

// batchSize caps the applications handled per tick.
const batchSize = 500

// StaleFinder is the read side of kanban.Store the scheduler needs.
type StaleFinder interface {
	ListStale(ctx context.Context, before time.Time, limit int) ([]kanban.Application, error)
}

// Scheduler wraps robfig/cron and manages the follow-up loop.
type Scheduler struct {
	cron   *cron.Cron
	store  StaleFinder
	events kanban.Publisher
	after  time.Duration
	spec   string // cron spec, e.g. "@every 24h"
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Scheduler that flags applications idle for longer than
// afterDays, checking on the given cron spec.
func New(store StaleFinder, events kanban.Publisher, spec string, afterDays int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:  store,
		events: events,
		after:  time.Duration(afterDays) * 24 * time.Hour,
		spec:   spec,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the job and starts the scheduler. Also runs one check
// immediately so reminders do not wait for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("follow-up scheduler started", "spec", s.spec, "after", s.after)

	go s.RunOnce(ctx)

	return nil
}

// Stop shuts down the scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("follow-up scheduler stopped")
}

// RunOnce publishes EventFollowUpDue for every stale application and returns
// how many were published. It never writes to the store.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	cutoff := s.now().UTC().Add(-s.after)
	apps, err := s.store.ListStale(ctx, cutoff, batchSize)
	if err != nil {
		s.logger.Error("list stale applications failed", "err", err)
		return 0
	}
	if len(apps) == 0 {
		s.logger.Debug("no applications need a follow-up")
		return 0
	}

	sent := 0
	for _, app := range apps {
		err := s.events.Publish(ctx, kanban.Event{
			Type:          kanban.EventFollowUpDue,
			ApplicationID: app.ID,
			UserID:        app.OwnerID,
			To:            app.CurrentStatus,
		})
		if err != nil {
			s.logger.Warn("publish follow-up failed", "applicationId", app.ID, "err", err)
			continue
		}
		sent++
	}
	s.logger.Info("follow-up check complete", "stale", len(apps), "published", sent)
	return sent
}
