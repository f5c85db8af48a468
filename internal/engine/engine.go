// Package engine composes the planner, risk assessor, guard, executor,
// verifier, and rollback builder into the single closed-loop run_once
// state machine.
package engine

import (
	"context"
	"fmt"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/executor"
	"github.com/summit/cfo/internal/fabric"
	"github.com/summit/cfo/internal/guard"
	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/planner"
	"github.com/summit/cfo/internal/risk"
	"github.com/summit/cfo/internal/rollback"
	"github.com/summit/cfo/internal/verifier"
)

// Severity classifies an Alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is the structured, user-visible failure/notice record produced
// whenever a run is not a clean apply-and-verify success.
type Alert struct {
	Severity           Severity        `json:"severity"`
	PlanID             string          `json:"plan_id,omitempty"`
	Summary            string          `json:"summary"`
	Risk               *risk.Assessment `json:"risk,omitempty"`
	VerificationFailures []string      `json:"verification_failures,omitempty"`
	Evidence           map[string]any  `json:"evidence,omitempty"`
	RollbackAttempted  bool            `json:"rollback_attempted"`
	UnrecoverablePaths []string        `json:"unrecoverable_paths,omitempty"`
}

// Result is run_once's sole output.
type Result struct {
	OK    bool
	Plan  *domain.ChangePlan
	Risk  *risk.Assessment
	Guard *guard.Decision
	Alert *Alert
}

// PolicyEvaluator is the narrow hook an external MCP-protocol service
// satisfies to substitute its own judgment for the local risk
// heuristic. It never mutates the plan.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, plan domain.ChangePlan, reg *inventory.Registry) (risk.Assessment, error)
}

// PolicyAuditor records an external policy evaluation that failed and
// made the engine fall back to the local heuristic. Successful
// evaluations are not reported to it.
type PolicyAuditor interface {
	RecordPolicyFallback(ctx context.Context, planID string, reason string)
}

// Config wires the engine's collaborators.
type Config struct {
	Planner  *planner.Planner
	Guard    *guard.Guard
	Executor executor.Executor
	Policy   PolicyEvaluator // optional; nil means local heuristic only
	Auditor  PolicyAuditor   // optional
}

// Engine runs the orchestration state machine.
type Engine struct {
	cfg Config
}

// New builds an Engine from its collaborators.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ValidateInventory runs the fabric topology and external-connectivity
// validators. The runner loop calls this once per cycle, before
// RunOnce is invoked for any intent against that inventory: a failing
// topology result blocks all subsequent plan execution for that cycle.
func (e *Engine) ValidateInventory(reg *inventory.Registry) (*fabric.Result, *fabric.Result) {
	g := fabric.Build(reg)
	topology := fabric.ValidateTopology(reg, g)
	external := fabric.ValidateExternalConnectivity(reg, g)
	return topology, external
}

// RunOnce implements run_once(intent, inventory) -> {ok, plan?, risk?,
// guard?, alert?}.
func (e *Engine) RunOnce(ctx context.Context, intent domain.IntentChange, reg *inventory.Registry) Result {
	topology, external := e.ValidateInventory(reg)
	if !topology.OK || !external.OK {
		return Result{OK: false, Alert: &Alert{
			Severity: SeverityCritical,
			PlanID:   intent.ChangeID,
			Summary:  "fabric topology failed validation; no plan was attempted",
			Evidence: map[string]any{"topology": topology, "external_connectivity": external},
		}}
	}

	plan, err := e.cfg.Planner.Plan(intent, reg)
	if err != nil {
		return Result{OK: false, Alert: &Alert{
			Severity: SeverityCritical,
			PlanID:   intent.ChangeID,
			Summary:  fmt.Sprintf("planning error: %v", err),
		}}
	}

	assessment := e.assessRisk(ctx, plan, reg)
	decision := e.cfg.Guard.Decide(assessment)

	switch decision.Mode {
	case guard.ModeDryRun:
		return Result{OK: false, Plan: &plan, Risk: &assessment, Guard: &decision, Alert: &Alert{
			Severity:          SeverityInfo,
			PlanID:            plan.PlanID,
			Summary:           "guard selected dry_run: plan was not applied",
			Risk:              &assessment,
			RollbackAttempted: false,
		}}

	case guard.ModeSimulate:
		observed := simulateObserved(plan)
		verification := verifier.Evaluate(plan.Verification, observed)
		if verification.OK {
			return Result{OK: true, Plan: &plan, Risk: &assessment, Guard: &decision}
		}
		return Result{OK: false, Plan: &plan, Risk: &assessment, Guard: &decision, Alert: &Alert{
			Severity:             SeverityWarning,
			PlanID:               plan.PlanID,
			Summary:              "simulated verification failed",
			Risk:                 &assessment,
			VerificationFailures: verification.Failures,
			Evidence:             map[string]any{"verification": verification.Evidence},
			RollbackAttempted:    false,
		}}

	default: // guard.ModeApply
		return e.runApply(ctx, plan, assessment, decision)
	}
}

func (e *Engine) assessRisk(ctx context.Context, plan domain.ChangePlan, reg *inventory.Registry) risk.Assessment {
	if e.cfg.Policy == nil {
		return risk.Assess(plan, reg)
	}
	assessment, err := e.cfg.Policy.Evaluate(ctx, plan, reg)
	if err != nil {
		if e.cfg.Auditor != nil {
			e.cfg.Auditor.RecordPolicyFallback(ctx, plan.PlanID, err.Error())
		}
		return risk.Assess(plan, reg)
	}
	return assessment
}

func (e *Engine) runApply(ctx context.Context, plan domain.ChangePlan, assessment risk.Assessment, decision guard.Decision) Result {
	observed, pre, err := e.cfg.Executor.Apply(ctx, plan)
	if err != nil {
		return e.failAndMaybeRollback(ctx, plan, assessment, decision, pre,
			fmt.Sprintf("executor transport failure: %v", err), nil)
	}

	verification := verifier.Evaluate(plan.Verification, observed)
	if verification.OK {
		return Result{OK: true, Plan: &plan, Risk: &assessment, Guard: &decision}
	}

	return e.failAndMaybeRollback(ctx, plan, assessment, decision, pre,
		"post-apply verification failed", verification.Failures)
}

func (e *Engine) failAndMaybeRollback(ctx context.Context, plan domain.ChangePlan, assessment risk.Assessment, decision guard.Decision, pre domain.DeviceSnapshot, summary string, failures []string) Result {
	alert := &Alert{
		Severity:             SeverityCritical,
		PlanID:               plan.PlanID,
		Summary:              summary,
		Risk:                 &assessment,
		VerificationFailures: failures,
		RollbackAttempted:    false,
	}

	if !plan.Rollback.Enabled {
		return Result{OK: false, Plan: &plan, Risk: &assessment, Guard: &decision, Alert: alert}
	}

	built := rollback.Build(plan, pre)
	alert.RollbackAttempted = true
	alert.UnrecoverablePaths = built.MissingPaths

	if len(built.Plan.Actions) > 0 {
		rollbackObserved, _, rollbackErr := e.cfg.Executor.Apply(ctx, built.Plan)
		if rollbackErr != nil {
			alert.Summary = fmt.Sprintf("%s; rollback execution also failed: %v", summary, rollbackErr)
		} else {
			rollbackVerification := verifier.Evaluate(built.Plan.Verification, rollbackObserved)
			if !rollbackVerification.OK {
				alert.UnrecoverablePaths = append(alert.UnrecoverablePaths, rollbackVerification.Failures...)
			}
		}
	}

	return Result{OK: false, Plan: &plan, Risk: &assessment, Guard: &decision, Alert: alert}
}

// simulateObserved builds an observed state equal to the plan's
// desired values, standing in for a real device read in simulate mode.
func simulateObserved(plan domain.ChangePlan) domain.ObservedState {
	observed := domain.ObservedState{}
	for _, action := range plan.Actions {
		for _, path := range action.OrderedPaths() {
			observed.Set(action.Device, path, action.ModelPaths[path])
		}
	}
	return observed
}
