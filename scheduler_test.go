package plasmonet

import (
	"math/rand"
	"testing"
)

type countingKernel struct {
	counters
	id    string
	calls int
}

func (k *countingKernel) ID() string { return k.id }
func (k *countingKernel) Step(rng *rand.Rand) bool {
	k.calls++
	k.record(true)
	return true
}

func TestSchedulerStepOnlyPicksEligibleKernels(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewScheduler(rng, 10)

	early := &countingKernel{id: "early"}
	late := &countingKernel{id: "late"}
	s.RegisterKernel(early, 1.0, 0, 0, nil)  // eligible forever
	s.RegisterKernel(late, 1.0, 100, 0, nil) // not yet eligible

	if err := s.Step(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if early.calls == 0 {
		t.Fatalf("expected the always-eligible kernel to be selected at least once")
	}
	if late.calls != 0 {
		t.Fatalf("expected the not-yet-eligible kernel to never be selected, got %d calls", late.calls)
	}
}

func TestSchedulerReturnsErrorWhenNoKernelEligible(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	s := NewScheduler(rng, 1)
	k := &countingKernel{id: "late"}
	s.RegisterKernel(k, 1.0, 5, 0, nil)

	if err := s.Step(); err == nil {
		t.Fatalf("expected an error when no kernel is eligible at step 0")
	}
}

func TestSchedulerEligibilityWindowOpensOverTime(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := NewScheduler(rng, 1)
	always := &countingKernel{id: "always"}
	later := &countingKernel{id: "later"}
	s.RegisterKernel(always, 0.0001, 0, 0, nil)
	s.RegisterKernel(later, 1000.0, 2, 0, nil)

	for i := 0; i < 2; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	if later.calls != 0 {
		t.Fatalf("expected 'later' kernel ineligible before step 2, but it was called %d times", later.calls)
	}

	if err := s.Step(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if later.calls == 0 {
		t.Fatalf("expected 'later' kernel to become eligible and dominate selection once its window opened")
	}
}

func TestAcceptanceRateWithNoHistoryIsZero(t *testing.T) {
	k := &countingKernel{id: "fresh"}
	if got := AcceptanceRate(k); got != 0 {
		t.Fatalf("expected 0 acceptance rate with no history, got %f", got)
	}
}

func TestAdaptiveVarianceFreezesOutsideWindow(t *testing.T) {
	v := NewAdaptiveVariance(0.1, 0.01, 1.0, 0.234, 10, 20)
	v.Update(5, true, 1.0) // before window
	if v.Sigma != 0.1 {
		t.Fatalf("expected sigma unchanged before the adaptation window, got %f", v.Sigma)
	}
	v.Update(25, true, 1.0) // after window
	if v.Sigma != 0.1 {
		t.Fatalf("expected sigma unchanged after the adaptation window, got %f", v.Sigma)
	}
	v.Update(15, true, 1.0) // inside window
	if v.Sigma == 0.1 {
		t.Fatalf("expected sigma to change inside the adaptation window")
	}
}

func TestAdaptiveVarianceClampsToRange(t *testing.T) {
	v := NewAdaptiveVariance(0.1, 0.05, 0.2, 0.234, 0, 1000)
	for i := 0; i < 100; i++ {
		v.Update(i, true, 1.0) // acceptRate far above target pushes sigma up
	}
	if v.Sigma > 0.2 {
		t.Fatalf("expected sigma clamped at max 0.2, got %f", v.Sigma)
	}
}
