package guard_test

import (
	"testing"

	"github.com/summit/cfo/internal/guard"
	"github.com/summit/cfo/internal/risk"
)

func TestDecideDefaultModeAllowsLowRisk(t *testing.T) {
	g := guard.New(guard.Config{})
	decision := g.Decide(risk.Assessment{Level: risk.Low})
	if decision.Mode != guard.ModeApply || !decision.Allowed {
		t.Fatalf("expected low risk to apply by default, got %+v", decision)
	}
}

func TestDecideHighRiskForcesConfiguredMode(t *testing.T) {
	g := guard.New(guard.Config{})
	decision := g.Decide(risk.Assessment{Level: risk.High})
	if decision.Mode != guard.ModeDryRun || decision.Allowed {
		t.Fatalf("expected high risk to force dry_run and disallow apply, got %+v", decision)
	}
}

func TestDecideHighRiskCustomModeCanAllow(t *testing.T) {
	g := guard.New(guard.Config{HighRiskMode: guard.ModeApply})
	decision := g.Decide(risk.Assessment{Level: risk.High})
	if decision.Mode != guard.ModeApply || !decision.Allowed {
		t.Fatalf("expected custom high_risk_mode=apply to allow, got %+v", decision)
	}
}

func TestDecideRequiresApprovalBlocksApplyByDefault(t *testing.T) {
	g := guard.New(guard.Config{})
	decision := g.Decide(risk.Assessment{Level: risk.Medium, RequiresApproval: true})
	if decision.Mode != guard.ModeDryRun || decision.Allowed {
		t.Fatalf("expected medium risk requiring approval to force dry_run, got %+v", decision)
	}
}

func TestDecideRequiresApprovalBlocksApplyDisabled(t *testing.T) {
	allow := false
	g := guard.New(guard.Config{RequireApprovalBlocksApply: &allow})
	decision := g.Decide(risk.Assessment{Level: risk.Medium, RequiresApproval: true})
	if decision.Mode != guard.ModeApply || !decision.Allowed {
		t.Fatalf("expected require_approval_blocks_apply=false to fall through to default mode, got %+v", decision)
	}
}
