package plasmonet

import "testing"

func TestNewParameterStartsClean(t *testing.T) {
	g := NewGraph()
	p := NewParameter(g, "x", 3.0)
	if g.IsDirty(p.Handle()) {
		t.Fatalf("a freshly constructed parameter must not be dirty")
	}
	if got := p.Value(); got != 3.0 {
		t.Fatalf("expected initial value 3.0, got %f", got)
	}
}

func TestSetValueUpdatesAndStaysClean(t *testing.T) {
	g := NewGraph()
	p := NewParameter(g, "x", 1.0)
	p.SetValue(2.0)
	if got := p.Value(); got != 2.0 {
		t.Fatalf("expected 2.0 after SetValue, got %f", got)
	}
	if g.IsDirty(p.Handle()) {
		t.Fatalf("a leaf parameter transitions straight back to clean after SetValue")
	}
}

func TestRegisterPostChangeObserverFiresWithOldAndNew(t *testing.T) {
	g := NewGraph()
	p := NewParameter(g, "x", 1.0)

	var gotOld, gotNew float64
	calls := 0
	p.RegisterPostChangeObserver(func(old, new float64) {
		calls++
		gotOld, gotNew = old, new
	})

	p.SetValue(7.0)
	if calls != 1 {
		t.Fatalf("expected observer to fire exactly once, fired %d times", calls)
	}
	if gotOld != 1.0 || gotNew != 7.0 {
		t.Fatalf("expected observer args (1.0, 7.0), got (%f, %f)", gotOld, gotNew)
	}
}

func TestMultiplePostChangeObserversAllFire(t *testing.T) {
	g := NewGraph()
	p := NewParameter(g, "x", 0.0)
	var calls []int
	p.RegisterPostChangeObserver(func(old, new float64) { calls = append(calls, 1) })
	p.RegisterPostChangeObserver(func(old, new float64) { calls = append(calls, 2) })
	p.SetValue(1.0)
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("expected both observers to fire in registration order, got %v", calls)
	}
}

func TestParameterIDRoundTrips(t *testing.T) {
	g := NewGraph()
	p := NewParameter(g, "coi", 1.0)
	if p.ID() != "coi" {
		t.Fatalf("expected ID() to return %q, got %q", "coi", p.ID())
	}
}
