package fabric

import (
	"fmt"
	"sort"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
)

// Result is the shared shape returned by every validator: ok/errors/
// warnings plus evidence suitable for direct inclusion in an alert.
type Result struct {
	OK       bool              `json:"ok"`
	Errors   []string          `json:"errors,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Evidence map[string]any    `json:"evidence"`
}

func newResult() *Result {
	return &Result{OK: true, Evidence: map[string]any{}}
}

func (r *Result) addError(format string, args ...any) {
	r.OK = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateTopology enforces the three CLOS invariants:
//  1. every leaf-like device needs >=2 fabric edges to spine-like peers.
//  2. super-spines need >=1 fabric edge to a spine-like peer and no
//     fabric edges to non-spine-like peers.
//  3. spine-like devices should only see {leaf-like, super-spine}
//     fabric neighbors; anything else is a warning, not an error.
func ValidateTopology(reg *inventory.Registry, g *Graph) *Result {
	result := newResult()
	roleCounts := map[domain.Role]int{}
	neighborSummary := map[string]any{}

	for _, d := range reg.All() {
		roleCounts[d.Role]++
		fabricEdges := g.FabricNeighbors(d.Name)
		neighborSummary[d.Name] = summarizeNeighbors(fabricEdges)

		switch {
		case d.Role.IsLeafLike():
			validateLeafLike(result, d, fabricEdges)
		case d.Role.IsSuperSpine():
			validateSuperSpine(result, d, fabricEdges)
		case d.Role.IsSpineLike():
			validateSpineLike(result, d, fabricEdges)
		}
	}

	result.Evidence["role_counts"] = roleCounts
	result.Evidence["neighbors"] = neighborSummary
	return result
}

func validateLeafLike(result *Result, d domain.Device, fabricEdges []Edge) {
	spineNeighbors := 0
	for _, e := range fabricEdges {
		if e.PeerManaged && e.PeerRole.IsSpineLike() {
			spineNeighbors++
		}
	}
	if spineNeighbors < 2 {
		result.addError("device %s: leaf-like devices require at least 2 fabric edges to spine-like peers, found %d", d.Name, spineNeighbors)
	}
}

func validateSuperSpine(result *Result, d domain.Device, fabricEdges []Edge) {
	spineNeighbors := 0
	var badNeighbors []string
	for _, e := range fabricEdges {
		if e.PeerManaged && e.PeerRole.IsSpineLike() {
			spineNeighbors++
			continue
		}
		// Unmanaged peers are "unknown", not a violation by themselves;
		// only a *managed*, non-spine-like peer is a genuine violation.
		if e.PeerManaged {
			badNeighbors = append(badNeighbors, e.PeerDevice)
		}
	}
	if spineNeighbors < 1 {
		result.addError("device %s: super-spine requires at least 1 fabric edge to a spine-like peer, found %d", d.Name, spineNeighbors)
	}
	// badNeighbors is always freshly scoped per call. Earlier revisions
	// declared it in an outer loop variable, so a prior super-spine's
	// bad-neighbor list leaked into the next one's errors.
	for _, bad := range badNeighbors {
		result.addError("device %s: super-spine has fabric edge to non-spine-like peer %s", d.Name, bad)
	}
}

func validateSpineLike(result *Result, d domain.Device, fabricEdges []Edge) {
	for _, e := range fabricEdges {
		if !e.PeerManaged {
			continue // unknown peer: not flagged either way
		}
		if !(e.PeerRole.IsLeafLike() || e.PeerRole.IsSuperSpine()) {
			result.addWarning("device %s: spine-like device has fabric neighbor %s with unexpected role %s", d.Name, e.PeerDevice, e.PeerRole)
		}
	}
}

func summarizeNeighbors(fabricEdges []Edge) map[string]any {
	peers := make([]string, 0, len(fabricEdges))
	for _, e := range fabricEdges {
		peers = append(peers, e.PeerDevice)
	}
	sort.Strings(peers)
	return map[string]any{
		"fabric_peer_count": len(fabricEdges),
		"fabric_peers":      peers,
	}
}

// ValidateExternalConnectivity runs after topology validation and
// applies the border-leaf or spine-external policy.
func ValidateExternalConnectivity(reg *inventory.Registry, g *Graph) *Result {
	result := newResult()

	var borderLeaves []domain.Device
	var spines []domain.Device
	for _, d := range reg.All() {
		if d.Role == domain.RoleBorderLeaf {
			borderLeaves = append(borderLeaves, d)
		}
		if d.Role.IsSpineLike() {
			spines = append(spines, d)
		}
	}

	if len(borderLeaves) > 0 {
		validateBorderLeafModel(result, reg, g, borderLeaves)
	} else {
		validateSpineExternalModel(result, g, spines)
	}

	result.Evidence["border_leaf_count"] = len(borderLeaves)
	result.Evidence["spine_count"] = len(spines)
	return result
}

func validateBorderLeafModel(result *Result, reg *inventory.Registry, g *Graph, borderLeaves []domain.Device) {
	anyExternal := false
	for _, bl := range borderLeaves {
		if len(g.ExternalEdges(bl.Name)) > 0 {
			anyExternal = true
			break
		}
	}
	if !anyExternal {
		result.addError("border-leaf model requires at least one border_leaf device with an external-kind edge")
	}

	for _, d := range reg.All() {
		ext := g.ExternalEdges(d.Name)
		if len(ext) == 0 {
			continue
		}
		switch {
		case d.Role.IsSpineLike():
			result.addWarning("device %s: spine carries external edge(s) alongside border-leaf model (mixed mode)", d.Name)
		case d.Role != domain.RoleBorderLeaf:
			result.addWarning("device %s: non-border device carries external edge(s) under border-leaf model", d.Name)
		}
	}
}

func validateSpineExternalModel(result *Result, g *Graph, spines []domain.Device) {
	if len(spines) == 0 {
		return
	}
	withExternal := 0
	for _, s := range spines {
		if len(g.ExternalEdges(s.Name)) > 0 {
			withExternal++
		}
	}
	if withExternal > 0 && withExternal < len(spines) {
		result.addError("spine-external model: partial spine external connectivity: %d of %d spine-like devices carry an external edge, all-or-none is required", withExternal, len(spines))
	}
}
