package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JobType represents the maintenance jobs the scheduler runs
type JobType int

const (
	JobTypePurge JobType = iota
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypePurge:
		return "purge"
	default:
		return "unknown"
	}
}

// Purger removes evaluation history older than a cutoff
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs periodic maintenance of the evaluation history
type Scheduler struct {
	purger    Purger
	retention time.Duration
	logger    *logrus.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	jobMutex  sync.Mutex // Ensures sequential job execution
	now       func() time.Time
}

// NewScheduler creates a scheduler that keeps retentionDays of history
func NewScheduler(purger Purger, retentionDays int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
}

// Enabled reports whether history is purged at all
func (s *Scheduler) Enabled() bool {
	return s.retention > 0
}

// Start begins the scheduled tasks. It is a no-op when retention is disabled.
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.logger.Info("History retention disabled, scheduler not started")
		return
	}
	s.wg.Add(1)
	go s.runScheduler()
}

// Stop ends the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	if !s.Enabled() {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	s.logger.Info("Running startup purge job")
	s.runPurge()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs all jobs that are scheduled for the given time
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	s.logger.WithFields(logrus.Fields{
		"hour":   t.Hour(),
		"minute": t.Minute(),
	}).Debug("Checking scheduled jobs")

	// Purge once a day at midnight
	if t.Hour() == 0 && t.Minute() == 0 {
		s.runPurge()
	}
}

// runPurge removes evaluations older than the retention window
func (s *Scheduler) runPurge() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	cutoff := s.now().Add(-s.retention)
	fields := logrus.Fields{
		"job_type": JobTypePurge.String(),
		"cutoff":   cutoff.Format(time.RFC3339),
	}

	removed, err := s.purger.PurgeOlderThan(context.Background(), cutoff)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Purge job failed")
		return
	}
	s.logger.WithFields(fields).WithField("removed", removed).Info("Purge job completed successfully")
}
