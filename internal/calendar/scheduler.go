package calendar

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers a sync of every tenant on a cron schedule.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *Orchestrator
	spec         string

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
}

// NewScheduler creates a scheduler running orchestrator on spec, a standard
// five-field cron expression or a descriptor such as "@every 15m".
func NewScheduler(orchestrator *Orchestrator, spec string) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parsing sync schedule %q: %w", spec, err)
	}

	return &Scheduler{
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		orchestrator: orchestrator,
		spec:         spec,
	}, nil
}

// Start registers the sync job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("scheduling calendar sync: %w", err)
	}

	s.entryID = entryID
	s.running = true
	s.cron.Start()
	log.Printf("Calendar sync scheduler started (%s)", s.spec)

	return nil
}

// Stop waits for a running sync to finish and stops the cron loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	log.Println("Stopping calendar sync scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)
	s.running = false
	log.Println("Calendar sync scheduler stopped")
}

// RunOnce syncs every tenant with at least one feed configured.
func (s *Scheduler) RunOnce(ctx context.Context) {
	reports, err := s.orchestrator.SyncAllTenants(ctx)
	if err != nil {
		log.Printf("Scheduled calendar sync failed: %v", err)
		return
	}

	for _, report := range reports {
		log.Printf("Scheduled sync for tenant %s: %d units, %d created, %d updated, %d skipped, %d failed",
			report.TenantID, report.Units, report.Created, report.Updated, report.Skipped, len(report.Errors))
	}
}
