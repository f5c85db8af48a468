// Package risk implements the deterministic blast-radius scorer that
// classifies a change plan as low, medium, or high risk.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
)

// Level is the coarse risk classification.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// Assessment is the risk package's sole output.
type Assessment struct {
	Level             Level          `json:"risk_level"`
	BlastRadiusScore  int            `json:"blast_radius_score"`
	RequiresApproval  bool           `json:"requires_approval"`
	Reasons           []string       `json:"reasons"`
	Evidence          map[string]any `json:"evidence"`
}

// Assess implements assess(plan, inventory) -> RiskAssessment. It is a
// pure function: equal (plan, inventory) always yields equal output.
func Assess(plan domain.ChangePlan, reg *inventory.Registry) Assessment {
	touched := plan.TouchedDevices()
	roleCounts := map[string]int{}
	var leaf, spine, superSpine, unknown int

	for _, name := range touched {
		d, ok := reg.Get(name)
		if !ok {
			unknown++
			roleCounts["unknown"]++
			continue
		}
		switch {
		case d.Role.IsLeafLike():
			leaf++
			roleCounts["leaf_like"]++
		case d.Role.IsSpineLike():
			spine++
			roleCounts["spine_like"]++
		case d.Role.IsSuperSpine():
			superSpine++
			roleCounts["super_spine"]++
		default:
			unknown++
			roleCounts[string(d.Role)]++
		}
	}

	external, bgp, ospf := scanPathFlags(plan.Actions)

	score := 10*len(touched) + 15*spine + 25*superSpine + 20*unknown
	if external {
		score += 30
	}
	if bgp {
		score += 20
	}
	if ospf {
		score += 15
	}

	level := classify(len(touched), external, bgp, ospf, score)
	requiresApproval := level == High || external || superSpine > 0

	var reasons []string
	if level == High {
		reasons = append(reasons, fmt.Sprintf("blast radius score %d classifies as high risk", score))
	}
	if unknown > 0 {
		reasons = append(reasons, "plan references devices missing from inventory")
	}
	if external {
		reasons = append(reasons, "plan touches external/internet/wan-adjacent paths")
	}
	if bgp {
		reasons = append(reasons, "plan touches bgp-related paths")
	}
	if ospf {
		reasons = append(reasons, "plan touches ospf-related paths")
	}
	if superSpine > 0 {
		reasons = append(reasons, fmt.Sprintf("plan touches %d super-spine device(s)", superSpine))
	}
	if spine > 0 && len(touched) <= 2 {
		reasons = append(reasons, "plan touches spine tier even though device count is small")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("plan touches %d device(s) across roles %v with no protocol/external flags", len(touched), sortedRoleCountKeys(roleCounts)))
	}

	return Assessment{
		Level:            level,
		BlastRadiusScore: score,
		RequiresApproval: requiresApproval,
		Reasons:          reasons,
		Evidence: map[string]any{
			"device_count":    len(touched),
			"touched_devices": touched,
			"role_counts":     roleCounts,
			"flags": map[string]bool{
				"external": external,
				"bgp":      bgp,
				"ospf":     ospf,
			},
		},
	}
}

func classify(deviceCount int, external, bgp, ospf bool, score int) Level {
	if deviceCount <= 2 && !external && !bgp && !ospf {
		return Low
	}
	if score < 80 {
		return Medium
	}
	return High
}

func scanPathFlags(actions []domain.ChangeAction) (external, bgp, ospf bool) {
	for _, a := range actions {
		for _, path := range a.OrderedPaths() {
			lower := strings.ToLower(path)
			if strings.Contains(lower, "bgp") {
				bgp = true
			}
			if strings.Contains(lower, "ospf") {
				ospf = true
			}
			if strings.Contains(lower, "external") || strings.Contains(lower, "internet") || strings.Contains(lower, "wan") {
				external = true
			}
		}
	}
	return
}

func sortedRoleCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
