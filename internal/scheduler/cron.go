package scheduler

import (
	"context"
	"fmt"

	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/models"
	"github.com/amkim/familyalbum/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages background housekeeping tasks
type Scheduler struct {
	cron     *cron.Cron
	store    *store.BoltStore
	pipeline *ingest.Pipeline
	logger   *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(st *store.BoltStore, pipeline *ingest.Pipeline, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		store:    st,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every hour: delete content blobs left behind by interrupted writes
	_, err := s.cron.AddFunc("0 * * * *", func() {
		s.runOrphanSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add orphan sweep job: %w", err)
	}

	// Every day at 03:00: log library statistics
	_, err = s.cron.AddFunc("0 3 * * *", func() {
		s.runStats()
	})
	if err != nil {
		return fmt.Errorf("failed to add stats job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial sweep so a crash before the first tick is cleaned up
	go s.runOrphanSweep()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runOrphanSweep executes the orphaned blob cleanup job
func (s *Scheduler) runOrphanSweep() {
	ctx := context.Background()

	swept, err := s.store.SweepOrphans(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Orphan sweep failed")
		return
	}
	if swept > 0 {
		s.logger.WithField("count", swept).Info("Orphan sweep completed")
	} else {
		s.logger.Debug("Orphan sweep found nothing to clean")
	}
}

// runStats logs the current library size by kind
func (s *Scheduler) runStats() {
	items := s.pipeline.Items()

	images, videos := 0, 0
	for _, item := range items {
		if item.Kind == models.KindImage {
			images++
		} else {
			videos++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"total":  len(items),
		"images": images,
		"videos": videos,
	}).Info("Library statistics")
}
