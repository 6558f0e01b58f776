package plasmonet

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// debugGraphEnv is the environment variable that turns on the acyclicity
// assertion. Cycle violations are a programming error (a node registered
// naming a handle that is not yet registered cannot happen by construction,
// see graph.go's register/AddDependent ordering comment) spec.md classes as
// assertion-guarded in debug builds rather than checked unconditionally,
// since walking the whole dependent relation on every graph mutation would
// defeat the point of the dirty-flag scheme's O(edges) propagation cost.
const debugGraphEnv = "PLASMONET_DEBUG_GRAPH"

// DebugGraphEnabled reports whether the acyclicity assertion should run,
// following the environment-variable-gated idiom the pack's gonum-based
// graph analysis tooling uses for its own optional expensive passes.
func DebugGraphEnabled() bool {
	return os.Getenv(debugGraphEnv) != ""
}

// AssertAcyclic builds a gonum/graph/simple.DirectedGraph mirror of g's
// dependee-to-dependent edges and panics naming the offending cycle if one
// is found. Intended to be called after domain construction, under
// DebugGraphEnabled, never on the hot MCMC path.
func AssertAcyclic(g *Graph) {
	mirror := simple.NewDirectedGraph()
	for h := range g.nodes {
		mirror.AddNode(simple.Node(h))
	}
	for h, n := range g.nodes {
		for _, dep := range n.dependents() {
			mirror.SetEdge(mirror.NewEdge(simple.Node(h), simple.Node(dep)))
		}
	}

	cycles := topo.DirectedCyclesIn(mirror)
	if len(cycles) == 0 {
		return
	}
	panic(fmt.Sprintf("plasmonet: dependency graph contains %d cycle(s), first involving handles %v", len(cycles), cycleHandles(cycles[0])))
}

func cycleHandles(nodes []graph.Node) []Handle {
	handles := make([]Handle, len(nodes))
	for i, n := range nodes {
		handles[i] = Handle(n.ID())
	}
	return handles
}
