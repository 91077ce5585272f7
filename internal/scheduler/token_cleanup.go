// Package scheduler runs the periodic maintenance jobs: expiring old picker
// tokens and kicking off the orphan-binary sweep.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/damlink/damlink/internal/config"
	"github.com/damlink/damlink/internal/tasks"
)

// TokenJanitor deletes expired picker tokens and their imported-record
// lists. *pickers.Repository implements it.
type TokenJanitor interface {
	DeleteTokensOlderThan(cutoff time.Time) (int64, error)
}

// SweepEnqueuer hands the follow-up binary sweep to the task queue.
// *tasks.Client implements it.
type SweepEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// TokenCleanupScheduler periodically removes picker tokens older than the
// configured TTL. Records imported under an expired token stay; only the
// session bookkeeping goes.
type TokenCleanupScheduler struct {
	janitor TokenJanitor
	queue   SweepEnqueuer
	config  config.Cleanup

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewTokenCleanupScheduler creates a new scheduler instance. queue may be nil
// when the task queue is disabled; the sweep is simply skipped then.
func NewTokenCleanupScheduler(janitor TokenJanitor, queue SweepEnqueuer, cfg config.Cleanup) *TokenCleanupScheduler {
	return &TokenCleanupScheduler{
		janitor: janitor,
		queue:   queue,
		config:  cfg,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cleanup is enabled.
func (s *TokenCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Token cleanup scheduler: disabled")
		return nil
	}
	if s.config.TokenTTL <= 0 {
		log.Printf("Token cleanup scheduler: no token TTL configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Token cleanup scheduler: started with schedule '%s', token TTL %v",
		s.config.Schedule, s.config.TokenTTL)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *TokenCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Token cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup.
func (s *TokenCleanupScheduler) RunNow() {
	go s.runCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *TokenCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur.
func (s *TokenCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *TokenCleanupScheduler) runCleanup() {
	cutoff := time.Now().Add(-s.config.TokenTTL)

	deleted, err := s.janitor.DeleteTokensOlderThan(cutoff)
	if err != nil {
		log.Printf("Token cleanup: failed: %v", err)
		return
	}
	log.Printf("Token cleanup: removed %d tokens issued before %v", deleted, cutoff.Format(time.RFC3339))

	if s.queue == nil {
		return
	}
	if _, err := s.queue.Add(tasks.SweepOrphanBinariesTask{}).Save(); err != nil {
		log.Printf("Token cleanup: failed to enqueue binary sweep: %v", err)
	}
}
