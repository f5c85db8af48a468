package planner_test

import (
	"testing"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/orcherr"
	"github.com/summit/cfo/internal/planner"
)

func buildReg(t *testing.T, devices []domain.Device) *inventory.Registry {
	t.Helper()
	reg, err := inventory.New(devices)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func TestPlanSingleActionShorthand(t *testing.T) {
	reg := buildReg(t, []domain.Device{{Name: "leaf1", Role: domain.RoleLeaf}})
	p := planner.New(planner.Config{})

	intent := domain.IntentChange{
		ChangeID: "chg-1",
		Desired: map[string]any{
			"device":      "leaf1",
			"model_paths": map[string]any{"/interfaces/eth0/enabled": true},
		},
	}
	plan, err := p.Plan(intent, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Device != "leaf1" {
		t.Fatalf("expected single action on leaf1, got %+v", plan.Actions)
	}
	if len(plan.Verification.Checks) != 1 {
		t.Fatalf("expected one verification check, got %d", len(plan.Verification.Checks))
	}
	if plan.Risk != domain.RiskLow {
		t.Fatalf("expected low risk tag for a single-action plan, got %s", plan.Risk)
	}
	if !plan.Rollback.Enabled {
		t.Fatalf("expected rollback to be enabled by default")
	}
}

func TestPlanActionsListShape(t *testing.T) {
	reg := buildReg(t, []domain.Device{
		{Name: "leaf1", Role: domain.RoleLeaf},
		{Name: "leaf2", Role: domain.RoleLeaf},
	})
	p := planner.New(planner.Config{})

	intent := domain.IntentChange{
		ChangeID: "chg-2",
		Desired: map[string]any{
			"actions": []any{
				map[string]any{"device": "leaf1", "model_paths": map[string]any{"/a": 1}},
				map[string]any{"device": "leaf2", "model_paths": map[string]any{"/b": 2}},
			},
		},
	}
	plan, err := p.Plan(intent, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(plan.Actions))
	}
	if got := plan.TouchedDevices(); len(got) != 2 || got[0] != "leaf1" || got[1] != "leaf2" {
		t.Fatalf("expected touched devices in first-seen order, got %v", got)
	}
}

func TestPlanRejectsUnknownDevicesSortedAndDeduped(t *testing.T) {
	reg := buildReg(t, []domain.Device{{Name: "leaf1", Role: domain.RoleLeaf}})
	p := planner.New(planner.Config{})

	intent := domain.IntentChange{
		ChangeID: "chg-3",
		Desired: map[string]any{
			"actions": []any{
				map[string]any{"device": "ghost-b", "model_paths": map[string]any{"/a": 1}},
				map[string]any{"device": "ghost-a", "model_paths": map[string]any{"/b": 2}},
				map[string]any{"device": "ghost-b", "model_paths": map[string]any{"/c": 3}},
			},
		},
	}
	_, err := p.Plan(intent, reg)
	if err == nil {
		t.Fatalf("expected an error for unknown devices")
	}
	invalid, ok := err.(*orcherr.InvalidIntent)
	if !ok {
		t.Fatalf("expected an *orcherr.InvalidIntent, got %T (%v)", err, err)
	}
	if len(invalid.MissingDevices) != 2 || invalid.MissingDevices[0] != "ghost-a" || invalid.MissingDevices[1] != "ghost-b" {
		t.Fatalf("expected sorted, deduped missing devices [ghost-a ghost-b], got %v", invalid.MissingDevices)
	}
}

func TestPlanRejectsEmptyModelPaths(t *testing.T) {
	reg := buildReg(t, []domain.Device{{Name: "leaf1", Role: domain.RoleLeaf}})
	p := planner.New(planner.Config{})

	intent := domain.IntentChange{
		ChangeID: "chg-4",
		Desired: map[string]any{
			"device":      "leaf1",
			"model_paths": map[string]any{},
		},
	}
	if _, err := p.Plan(intent, reg); err == nil {
		t.Fatalf("expected an error for empty model_paths")
	}
}

func TestPlanRiskTagBoundaries(t *testing.T) {
	devices := make([]domain.Device, 0, 11)
	for i := 0; i < 11; i++ {
		devices = append(devices, domain.Device{Name: deviceName(i), Role: domain.RoleLeaf})
	}
	reg := buildReg(t, devices)
	p := planner.New(planner.Config{})

	actions := make([]any, 0, 3)
	for i := 0; i < 3; i++ {
		actions = append(actions, map[string]any{"device": deviceName(i), "model_paths": map[string]any{"/a": i}})
	}
	intent := domain.IntentChange{ChangeID: "chg-5", Desired: map[string]any{"actions": actions}}
	plan, err := p.Plan(intent, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Risk != domain.RiskMedium {
		t.Fatalf("expected 3 actions (above the 2-device low-risk default) to tag medium, got %s", plan.Risk)
	}
}

func deviceName(i int) string {
	return string(rune('a'+i)) + "-leaf"
}
