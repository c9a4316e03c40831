// Package scheduler runs the Jolpica import on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/service"
)

// Importer is the part of service.ImportService the scheduler drives
type Importer interface {
	Run(ctx context.Context, opts service.ImportOptions) (*service.IngestionMetrics, error)
}

// Scheduler manages scheduled import jobs
type Scheduler struct {
	cron       *cron.Cron
	importer   Importer
	logger     *logrus.Entry
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
	now        func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(importer Importer, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		importer:   importer,
		logger:     logger.WithField("component", "scheduler"),
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: 4 * time.Hour,
		now:        time.Now,
	}
}

// ScheduleSeasonImport schedules a refresh of the current season's calendar
// and results. withChampions also recounts championship titles.
func (s *Scheduler) ScheduleSeasonImport(cronExpression string, withChampions bool) (cron.EntryID, error) {
	return s.add(cronExpression, "season import", func() service.ImportOptions {
		year := s.now().UTC().Year()
		return service.ImportOptions{
			StartYear:         year,
			EndYear:           year,
			SkipReferences:    false,
			SkipChampionships: !withChampions,
		}
	})
}

// ScheduleCalendarRefresh schedules a session-time refresh of the current and next season
func (s *Scheduler) ScheduleCalendarRefresh(cronExpression string) (cron.EntryID, error) {
	return s.add(cronExpression, "calendar refresh", func() service.ImportOptions {
		year := s.now().UTC().Year()
		return service.ImportOptions{
			StartYear:         year,
			EndYear:           year + 1,
			SkipReferences:    true,
			SkipResults:       true,
			SkipChampionships: true,
		}
	})
}

func (s *Scheduler) add(cronExpression, name string, opts func() service.ImportOptions) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() { s.runJob(name, opts()) })
	if err != nil {
		return 0, fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("Scheduled import job")

	return entryID, nil
}

// runJob executes one import with the job timeout
func (s *Scheduler) runJob(name string, opts service.ImportOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	log := s.logger.WithFields(logrus.Fields{
		"job":        name,
		"start_year": opts.StartYear,
		"end_year":   opts.EndYear,
	})
	log.Info("Starting scheduled import")

	metrics, err := s.importer.Run(ctx, opts)
	if err != nil {
		log.WithError(err).Error("Scheduled import failed")
		return
	}
	log.Infof("Scheduled import completed: %s", metrics.String())
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	for i, id := range s.jobIDs {
		if id == jobID {
			s.jobIDs = append(s.jobIDs[:i], s.jobIDs[i+1:]...)
			break
		}
	}
	s.logger.Infof("Removed job: %d", jobID)

	return nil
}
