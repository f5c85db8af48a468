package fabric

import "fmt"

// SwitchSpec is a physical switch specification used for capacity
// planning: total physical ports, plus an optional breakout factor for
// switches whose ports can be split into multiple lower-speed lanes
// (e.g. 32x100G broken out 4-ways into 128x25G gives breakout_factor=4).
type SwitchSpec struct {
	PortCount      int
	BreakoutFactor int // 1 means no breakout
}

// EffectivePorts returns the usable port count after breakout.
func (s SwitchSpec) EffectivePorts() int {
	factor := s.BreakoutFactor
	if factor <= 0 {
		factor = 1
	}
	return s.PortCount * factor
}

// ArchitecturePlan is the structured output of capacity planning: how
// many leaves/spines/super-spines a fabric needs to reach a target
// server count, and why.
type ArchitecturePlan struct {
	Tier            string
	LeafCount       int
	SpineCount      int
	SuperSpineCount int
	MaxServers      int
	Explanation     string
}

// TwoTierCapacity computes the non-blocking two-tier (leaf/spine)
// capacity formula: total_servers = leafPorts * spinePorts / 2,
// assuming half of each leaf's ports face servers and half face
// spines.
func TwoTierCapacity(leafPorts, spinePorts int) int {
	return (leafPorts * spinePorts) / 2
}

// ThreeTierCapacity computes the three-tier (leaf/spine/super-spine)
// capacity formula when every tier uses the same port count n:
// total_servers = n^3 / 4, derived from leaf_count = spine_count =
// super_spine_count = n / 2.
func ThreeTierCapacity(n int) int {
	return (n * n * n) / 4
}

// BreakoutAdjustedCapacity computes two-tier capacity using each
// switch's effective (breakout-adjusted) port count.
func BreakoutAdjustedCapacity(leaf, spine SwitchSpec) int {
	return TwoTierCapacity(leaf.EffectivePorts(), spine.EffectivePorts())
}

// SynthesizeArchitecture decides between a two-tier and three-tier
// fabric for requiredServers servers built from leaf/spine switches of
// the given specs: it computes the two-tier capacity first, and only
// escalates to three-tier when that capacity is insufficient.
func SynthesizeArchitecture(requiredServers int, leaf, spine SwitchSpec) ArchitecturePlan {
	twoTierMax := BreakoutAdjustedCapacity(leaf, spine)

	if requiredServers <= twoTierMax {
		return ArchitecturePlan{
			Tier:            "two-tier",
			LeafCount:       leaf.EffectivePorts() / 2,
			SpineCount:      spine.EffectivePorts() / 2,
			SuperSpineCount: 0,
			MaxServers:      twoTierMax,
			Explanation: fmt.Sprintf(
				"two tier sufficient: capacity %d servers >= required %d",
				twoTierMax, requiredServers),
		}
	}

	n := leaf.EffectivePorts()
	threeTierMax := ThreeTierCapacity(n)
	return ArchitecturePlan{
		Tier:            "three-tier",
		LeafCount:       n / 2,
		SpineCount:      n / 2,
		SuperSpineCount: n / 2,
		MaxServers:      threeTierMax,
		Explanation: fmt.Sprintf(
			"two tier insufficient (%d); escalating to three tier with capacity %d",
			twoTierMax, threeTierMax),
	}
}
