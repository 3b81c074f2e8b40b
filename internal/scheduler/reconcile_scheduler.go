package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/subculture-collective/adserve/pkg/metrics"
)

// ReconcilerInterface is the minimal cache.Reconciler dependency the
// scheduler needs; the day to reconcile for comes from DayProvider.
type ReconcilerInterface interface {
	Reconcile(ctx context.Context, day uint32) error
}

// DayProvider reports the current simulated day (clock.Service.Now).
type DayProvider interface {
	Now() uint32
}

// ReconcileScheduler periodically re-runs the ActiveCache rebuild policy
// (spec §4.4) as a backstop: clock.Service already triggers a synchronous
// Reconcile on every /time/advance call, but a cache that was flushed, or
// restarted against a stale Redis, only self-heals on the next clock advance
// without this ticker also nudging it.
type ReconcileScheduler struct {
	reconciler ReconcilerInterface
	clock      DayProvider
	interval   time.Duration
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewReconcileScheduler creates a scheduler that reconciles the ActiveCache
// every intervalMinutes.
func NewReconcileScheduler(reconciler ReconcilerInterface, clock DayProvider, intervalMinutes int) *ReconcileScheduler {
	return &ReconcileScheduler{
		reconciler: reconciler,
		clock:      clock,
		interval:   time.Duration(intervalMinutes) * time.Minute,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the periodic reconcile loop, running one pass immediately.
func (s *ReconcileScheduler) Start(ctx context.Context) {
	log.Printf("Starting active campaign cache reconcile scheduler (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.reconcileActiveCache(ctx)

	for {
		select {
		case <-ticker.C:
			s.reconcileActiveCache(ctx)
		case <-s.stopChan:
			log.Println("Active campaign cache reconcile scheduler stopped")
			return
		case <-ctx.Done():
			log.Println("Active campaign cache reconcile scheduler stopped due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler in a thread-safe manner.
func (s *ReconcileScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// reconcileActiveCache executes one reconcile pass for the current day.
func (s *ReconcileScheduler) reconcileActiveCache(ctx context.Context) {
	jobName := "active_cache_reconcile"
	log.Println("Starting scheduled active campaign cache reconcile...")
	startTime := time.Now()

	day := s.clock.Now()
	err := s.reconciler.Reconcile(ctx, day)
	duration := time.Since(startTime)
	metrics.JobExecutionDuration.WithLabelValues(jobName).Observe(duration.Seconds())

	if err != nil {
		log.Printf("Active cache reconcile failed: %v", err)
		metrics.JobExecutionTotal.WithLabelValues(jobName, "failed").Inc()
		return
	}

	metrics.JobExecutionTotal.WithLabelValues(jobName, "success").Inc()
	metrics.JobLastSuccessTimestamp.WithLabelValues(jobName).Set(float64(time.Now().Unix()))
	log.Printf("Active campaign cache reconcile completed in %v", duration)
}
