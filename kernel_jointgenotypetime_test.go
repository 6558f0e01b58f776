package plasmonet

import (
	"math/rand"
	"testing"
)

func buildSampleLikelihood(d *Domain) (*Likelihood, map[string]*ParentSet, *Ordering) {
	g := d.Graph
	ordering := NewOrdering()
	ordering.AddElements(d.Events)

	parentSets := make(map[string]*ParentSet, len(d.Events))
	for _, ev := range d.Events {
		var allowed []*InfectionEvent
		for _, other := range d.Events {
			if other != ev {
				allowed = append(allowed, other)
			}
		}
		parentSets[ev.ID()] = NewParentSet(ordering, ev, allowed)
	}

	coi := NewParameter(g, "coi", 2.0)
	geomProb := NewParameter(g, "geom_prob", 0.5)
	beta := NewParameter(g, "beta", 1.0)

	logLik := NewAccumulator(g)
	logPrior := NewAccumulator(g)
	for _, ev := range d.Events {
		epsPos := NewParameter(g, ev.ID()+":eps_pos", 0.05)
		epsNeg := NewParameter(g, ev.ID()+":eps_neg", 0.05)
		for _, locus := range d.Loci {
			logLik.AddChild(NewNodeTransmission(g, ev, locus, parentSets[ev.ID()], d.AlleleFrequencies[locus], coi, geomProb))
			if obs, ok := ev.ObservedGenotype(locus); ok {
				logLik.AddChild(NewObservationProcess(g, ev.LatentGenotype(locus), obs, epsPos, epsNeg))
			}
		}
	}
	lik := NewLikelihood(g, logLik, logPrior, beta)
	return lik, parentSets, ordering
}

func TestJointGenotypeTimeStepProducesFiniteLikelihood(t *testing.T) {
	d := sampleDomain()
	lik, parentSets, _ := buildSampleLikelihood(d)

	c := d.EventByID["c"]
	variance := NewAdaptiveVariance(0.1, 1e-4, 10, 0.234, 0, 1000)
	kernel := NewJointGenotypeTime("c", c, parentSets["c"], d.Exogenous, lik, 0.1, 10, variance, 0.05, 0.05)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		kernel.Step(rng)
	}
	if got := lik.Value(); got != got { // NaN check
		t.Fatalf("expected a well-defined likelihood after repeated joint proposals, got NaN")
	}
}

func TestCalculateSamplingProbWithNoCandidateParents(t *testing.T) {
	d := sampleDomain()
	lik, parentSets, _ := buildSampleLikelihood(d)

	a := d.EventByID["a"]
	variance := NewAdaptiveVariance(0.1, 1e-4, 10, 0.234, 0, 1000)
	kernel := NewJointGenotypeTime("a", a, parentSets["a"], d.Exogenous, lik, 0.1, 10, variance, 0.05, 0.05)

	// With no candidate parents, only the exogenous-only combination is
	// evaluated: the single-element marginal collapses to that combo's
	// own log-likelihood.
	got := kernel.calculateSamplingProb(nil)
	if got != got { // NaN check
		t.Fatalf("expected a well-defined sampling probability, got NaN")
	}
}
