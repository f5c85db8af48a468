// Package fabric builds the device topology graph from an inventory
// and validates it against CLOS and external-connectivity invariants.
package fabric

import (
	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
)

// Edge is one directed adjacency, keyed by source device.
type Edge struct {
	LocalInterface string
	PeerDevice     string
	PeerInterface  string
	Kind           domain.LinkKind
	PeerManaged    bool
	PeerRole       domain.Role // zero value if PeerManaged is false
}

// Graph is a directed multigraph of edges keyed by source device name.
// Reverse-edge synthesis for managed peers is additive: duplicates are
// never reconciled, by design; validators must tolerate
// them.
type Graph struct {
	edges map[string][]Edge
	reg   *inventory.Registry
}

// Build constructs the graph from reg: for every device, every link
// becomes a forward edge; if the peer is also managed, a symmetric
// reverse edge is added with local/peer interfaces swapped.
func Build(reg *inventory.Registry) *Graph {
	g := &Graph{edges: map[string][]Edge{}, reg: reg}
	for _, d := range reg.All() {
		for _, l := range d.Links {
			peer, managed := reg.Get(l.PeerDevice)
			fwd := Edge{
				LocalInterface: l.LocalInterface,
				PeerDevice:     l.PeerDevice,
				PeerInterface:  l.PeerInterface,
				Kind:           l.Kind,
				PeerManaged:    managed,
			}
			if managed {
				fwd.PeerRole = peer.Role
			}
			g.edges[d.Name] = append(g.edges[d.Name], fwd)

			if managed {
				rev := Edge{
					LocalInterface: l.PeerInterface,
					PeerDevice:     d.Name,
					PeerInterface:  l.LocalInterface,
					Kind:           l.Kind,
					PeerManaged:    true,
					PeerRole:       d.Role,
				}
				g.edges[l.PeerDevice] = append(g.edges[l.PeerDevice], rev)
			}
		}
	}
	return g
}

// EdgesOf returns the edges for a given device in insertion order. The
// returned slice is owned by the caller's copy, not the graph's backing
// array.
func (g *Graph) EdgesOf(device string) []Edge {
	edges := g.edges[device]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// FabricNeighbors returns the peers reached by fabric-kind edges from
// device. MLAG-peer edges never count as fabric uplinks.
func (g *Graph) FabricNeighbors(device string) []Edge {
	var out []Edge
	for _, e := range g.edges[device] {
		if e.Kind == domain.LinkFabric {
			out = append(out, e)
		}
	}
	return out
}

// ExternalEdges returns the edges of device whose kind denotes external
// connectivity ({external, internet, wan}).
func (g *Graph) ExternalEdges(device string) []Edge {
	var out []Edge
	for _, e := range g.edges[device] {
		if e.Kind.IsExternal() {
			out = append(out, e)
		}
	}
	return out
}
