// Package scheduler wires up the cron job that periodically runs one poll
// cycle: reconcile the spreadsheet, refresh the label directory, dispatch
// due reminders.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/beluccky/candidate-bot/internal/reconcile"
)

// Reconciler runs one reconciliation pass.
type Reconciler interface {
	Run(ctx context.Context) (reconcile.Summary, error)
}

// DirectoryReplacer swaps the recruiter-label directory for a fresh label set.
type DirectoryReplacer interface {
	Replace(ctx context.Context, labels []string) error
}

// Engine runs one reminder-dispatch pass.
type Engine interface {
	Run(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the poll loop. The mutex covers a
// whole cycle, so ticks never overlap an in-flight cycle; a slow cycle delays
// the next tick instead of racing it.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	directory  DirectoryReplacer
	engine     Engine
	spec       string // cron spec, e.g. "@every 1h"

	mu sync.Mutex
}

// New creates a Scheduler that fires every intervalHours hours.
func New(rec Reconciler, dir DirectoryReplacer, eng Engine, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cron.DefaultLogger)),
		reconciler: rec,
		directory:  dir,
		engine:     eng,
		spec:       fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so reminders are not held back until the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runCycle executes one full poll cycle. Failures are logged and the cycle
// retried on the next tick; nothing here is fatal to the process.
func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Println("[scheduler] Poll cycle started")

	sum, err := s.reconciler.Run(ctx)
	if err != nil {
		log.Printf("[scheduler] Reconciliation failed, cycle aborted: %v", err)
		return
	}
	log.Printf("[scheduler] Reconciled %d row(s): inserted=%d known=%d skipped=%d",
		sum.RowsFetched, sum.Inserted, sum.AlreadyKnown, sum.Skipped)

	// The directory is a cache; a Redis hiccup must not hold back reminders.
	if err := s.directory.Replace(ctx, sum.Labels); err != nil {
		log.Printf("[scheduler] Directory refresh failed: %v — continuing", err)
	}

	if err := s.engine.Run(ctx); err != nil {
		log.Printf("[scheduler] Reminder pass failed: %v", err)
		return
	}

	log.Println("[scheduler] Poll cycle complete")
}
