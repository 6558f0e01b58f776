package plasmonet

import "testing"

func TestDebugGraphEnabledReflectsEnvVar(t *testing.T) {
	t.Setenv(debugGraphEnv, "")
	if DebugGraphEnabled() {
		t.Fatalf("expected debug graph to be disabled with an empty env var")
	}
	t.Setenv(debugGraphEnv, "1")
	if !DebugGraphEnabled() {
		t.Fatalf("expected debug graph to be enabled once the env var is set")
	}
}

func TestAssertAcyclicPassesOnAcyclicGraph(t *testing.T) {
	g := NewGraph()
	a := NewParameter(g, "a", 1.0)
	b := NewAccumulator(g)
	b.AddChild(a)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("expected no panic on an acyclic graph, got %v", r)
		}
	}()
	AssertAcyclic(g)
}

func TestAssertAcyclicPanicsOnCycle(t *testing.T) {
	g := NewGraph()
	a := NewParameter(g, "a", 1.0)
	b := NewParameter(g, "b", 2.0)

	// Force a cycle directly through the dependent relation: this cannot
	// happen through the normal register-then-AddDependent API (register
	// order keeps the graph acyclic by construction), so it stands in for
	// the kind of construction bug AssertAcyclic exists to catch.
	g.AddDependent(a.Handle(), b.Handle())
	g.AddDependent(b.Handle(), a.Handle())

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected AssertAcyclic to panic on a cyclic graph")
		}
	}()
	AssertAcyclic(g)
}
