// Package guard decides whether and how a plan executes, given a risk
// assessment.
package guard

import (
	"fmt"

	"github.com/summit/cfo/internal/risk"
)

// Mode is the guard's execution-mode decision.
type Mode string

const (
	ModeApply    Mode = "apply"
	ModeSimulate Mode = "simulate"
	ModeDryRun   Mode = "dry_run"
)

// Config tunes guard behavior. Zero-value Config uses documented
// defaults (default_mode=apply, high_risk_mode=dry_run,
// require_approval_blocks_apply=true).
type Config struct {
	DefaultMode                Mode
	HighRiskMode                Mode
	RequireApprovalBlocksApply  *bool
}

func (c Config) withDefaults() Config {
	if c.DefaultMode == "" {
		c.DefaultMode = ModeApply
	}
	if c.HighRiskMode == "" {
		c.HighRiskMode = ModeDryRun
	}
	if c.RequireApprovalBlocksApply == nil {
		t := true
		c.RequireApprovalBlocksApply = &t
	}
	return c
}

// Decision is the guard's output.
type Decision struct {
	Mode    Mode     `json:"mode"`
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons"`
}

// Guard evaluates risk assessments into execution decisions.
type Guard struct {
	cfg Config
}

// New builds a Guard with the given config (zero value accepted).
func New(cfg Config) *Guard {
	return &Guard{cfg: cfg.withDefaults()}
}

// Decide implements decide(risk) -> {mode, allowed, reasons},
// applying the three rules in order.
func (g *Guard) Decide(assessment risk.Assessment) Decision {
	reasons := append([]string{}, assessment.Reasons...)

	if assessment.Level == risk.High {
		mode := g.cfg.HighRiskMode
		reasons = append(reasons, fmt.Sprintf("high risk forces mode %s", mode))
		return Decision{Mode: mode, Allowed: mode == ModeApply, Reasons: reasons}
	}

	if *g.cfg.RequireApprovalBlocksApply && assessment.RequiresApproval {
		reasons = append(reasons, "approval required and require_approval_blocks_apply is set: forcing dry_run")
		return Decision{Mode: ModeDryRun, Allowed: false, Reasons: reasons}
	}

	mode := g.cfg.DefaultMode
	allowed := mode == ModeApply
	reasons = append(reasons, fmt.Sprintf("default mode %s applies", mode))
	return Decision{Mode: mode, Allowed: allowed, Reasons: reasons}
}
