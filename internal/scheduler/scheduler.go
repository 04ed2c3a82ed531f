package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rubkoff/assistant/internal/database"
)

// RetentionDays is how long stored recommendations are kept before
// the nightly cleanup removes them.
const RetentionDays = 30

// Scheduler runs periodic database maintenance. Currently that is the
// nightly purge of stale recommendations.
type Scheduler struct {
	db       *database.Database
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex
}

func NewScheduler(db *database.Database, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled tasks. Cleanup also runs once at startup
// so a long-stopped server catches up immediately.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	go s.runCleanup()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			// Midnight, server local time.
			if t.Hour() == 0 && t.Minute() == 0 {
				s.runCleanup()
			}
		}
	}
}

func (s *Scheduler) runCleanup() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	removed, err := s.db.CleanupOldRecommendations(RetentionDays)
	if err != nil {
		s.logger.WithError(err).Error("Failed to clean up old recommendations")
		return
	}
	if removed > 0 {
		s.logger.WithField("removed", removed).Info("Cleaned up old recommendations")
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
