// Package runner drives the periodic ingest-plan-apply cycle: load
// inventory, fetch pending intents, run each through the engine, and
// report the result, then sleep until the next cycle.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/engine"
	"github.com/summit/cfo/internal/inventory"
)

// InventoryLoader fetches the current inventory for a cycle.
type InventoryLoader func() (*inventory.Registry, error)

// IntentSource fetches the intents pending against the current cycle.
// No persistence of intent status is expected of a conforming
// implementation; the core never marks an intent consumed.
type IntentSource func() ([]domain.IntentChange, error)

// Runner owns the periodic cycle.
type Runner struct {
	engine   *engine.Engine
	loadInv  InventoryLoader
	loadInts IntentSource
	interval time.Duration
}

// New builds a Runner.
func New(eng *engine.Engine, loadInv InventoryLoader, loadInts IntentSource, interval time.Duration) *Runner {
	return &Runner{engine: eng, loadInv: loadInv, loadInts: loadInts, interval: interval}
}

// Run blocks, executing run_cycle every interval until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := r.RunCycle(ctx); err != nil {
			log.Printf("cycle error: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}
}

// RunCycle executes exactly one load-plan-apply-report pass. It is
// exposed separately from Run so tests can drive individual cycles
// without waiting on the sleep interval.
func (r *Runner) RunCycle(ctx context.Context) error {
	reg, err := r.loadInv()
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	topology, external := r.engine.ValidateInventory(reg)
	if !topology.OK || !external.OK {
		log.Printf("inventory failed validation: topology_errors=%v external_errors=%v", topology.Errors, external.Errors)
		return nil
	}

	intents, err := r.loadInts()
	if err != nil {
		return fmt.Errorf("load intents: %w", err)
	}

	for _, intent := range intents {
		result := r.engine.RunOnce(ctx, intent, reg)
		reportResult(intent, result)
	}
	return nil
}

func reportResult(intent domain.IntentChange, result engine.Result) {
	if result.OK {
		log.Printf("change %s: ok", intent.ChangeID)
		return
	}
	if result.Alert == nil {
		log.Printf("change %s: not ok, no alert produced", intent.ChangeID)
		return
	}
	a := result.Alert
	log.Printf("change %s: %s severity=%s rollback_attempted=%t verification_failures=%v unrecoverable_paths=%v",
		intent.ChangeID, a.Summary, a.Severity, a.RollbackAttempted, a.VerificationFailures, a.UnrecoverablePaths)
}
