// Package rollback constructs the inverse of a plan from its
// pre-change snapshot.
package rollback

import (
	"fmt"

	"github.com/summit/cfo/internal/domain"
)

// Result is the rollback builder's output.
type Result struct {
	Plan         domain.ChangePlan
	MissingPaths []string
}

// ObservationSeconds is the default, shorter observation window used
// for rollback verification.
const ObservationSeconds = 30

// Build implements build(original_plan, pre_snapshot) -> {plan,
// missing_paths}. For every original action, every
// path present in the snapshot contributes a rollback action entry
// with the snapshot value; paths absent from the snapshot are skipped
// and reported. Actions with no rollback entries are omitted entirely.
func Build(original domain.ChangePlan, pre domain.DeviceSnapshot) Result {
	var actions []domain.ChangeAction
	var checks []domain.VerificationCheck
	var missing []string

	for _, action := range original.Actions {
		modelPaths := map[string]any{}
		var paths []string
		for _, path := range action.OrderedPaths() {
			ov := pre.Get(action.Device, path)
			if !ov.Present {
				missing = append(missing, fmt.Sprintf("%s:%s", action.Device, path))
				continue
			}
			modelPaths[path] = ov.Value
			paths = append(paths, path)
			checks = append(checks, domain.VerificationCheck{
				Type:     domain.CheckPathEquals,
				Device:   action.Device,
				Path:     path,
				Expected: ov.Value,
			})
		}
		if len(paths) == 0 {
			continue
		}
		actions = append(actions, domain.ChangeAction{
			Device:     action.Device,
			Paths:      paths,
			ModelPaths: modelPaths,
			Reason:     fmt.Sprintf("rollback of %s", original.PlanID),
		})
	}

	plan := domain.ChangePlan{
		PlanID:  original.PlanID + "_rollback",
		Actions: actions,
		Verification: domain.VerificationSpec{
			Checks:             checks,
			ObservationSeconds: ObservationSeconds,
		},
		Rollback:    domain.RollbackSpec{Enabled: false},
		Risk:        domain.RiskHigh,
		Explanation: fmt.Sprintf("rollback plan for %s", original.PlanID),
	}

	return Result{Plan: plan, MissingPaths: missing}
}
