package plasmonet

import (
	"math"
	"math/rand"
	"testing"
)

// buildTestChain wires a minimal chain whose raw log-likelihood is exactly
// the value of a single float parameter, letting tests drive swap decisions
// deterministically without any domain machinery.
func buildTestChain(beta0, logLikValue float64) (*Chain, *Parameter[float64]) {
	g := NewGraph()
	betaParam := NewParameter(g, "beta", beta0)
	logLikParam := NewParameter(g, "raw_log_lik", logLikValue)

	logLik := NewAccumulator(g)
	logLik.AddChild(logLikParam)
	logPrior := NewAccumulator(g)

	lik := NewLikelihood(g, logLik, logPrior, betaParam)
	lik.Value() // force clean before Published/RawLikelihood is read directly

	rng := rand.New(rand.NewSource(1))
	scheduler := NewScheduler(rng, 0) // Advance only needs Step() to succeed with samplesPerStep=0
	return NewChain(g, scheduler, betaParam, lik), logLikParam
}

func TestChainAdvancePublishesLikelihoodUnderLock(t *testing.T) {
	c, _ := buildTestChain(1.0, 5.0)
	if err := c.Advance(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := c.Published(); got != 5.0 {
		t.Fatalf("expected published log-posterior 5.0, got %f", got)
	}
}

func TestNewLadderAssignsGeometricTemperatures(t *testing.T) {
	var betas []float64
	ladder := NewLadder(4, 0.5, func(k int, beta float64) *Chain {
		betas = append(betas, beta)
		c, _ := buildTestChain(beta, 0)
		return c
	})
	want := []float64{1.0, 0.5, 0.25, 0.125}
	for i, w := range want {
		if betas[i] != w {
			t.Fatalf("rung %d: expected beta %f, got %f", i, w, betas[i])
		}
	}
	if ladder.Cold() != ladder.Chains()[0] {
		t.Fatalf("expected rung 0 to start as the cold chain")
	}
}

func TestAttemptSwapAlwaysAcceptsWhenColderChainIsLessLikely(t *testing.T) {
	// beta_a=1.0 (cold), beta_b=0.5 (hot); hot chain's raw likelihood is much
	// higher, so (betaA-betaB)*(lB-lA) > 0 and the swap is accepted
	// unconditionally regardless of the random draw.
	cold, _ := buildTestChain(1.0, -100.0)
	hot, _ := buildTestChain(0.5, -1.0)
	cold.Advance()
	hot.Advance()

	ladder := ladderFromChains([]*Chain{cold, hot})

	rng := rand.New(rand.NewSource(42))
	ladder.AttemptSwaps(rng)

	if cold.Beta.Value() != 0.5 {
		t.Fatalf("expected the former cold chain's beta swapped to 0.5, got %f", cold.Beta.Value())
	}
	if hot.Beta.Value() != 1.0 {
		t.Fatalf("expected the former hot chain's beta swapped to 1.0, got %f", hot.Beta.Value())
	}
	if ladder.Cold() != hot {
		t.Fatalf("expected the relabeled cold chain to be the rung now holding beta=1.0")
	}
}

func TestAttemptSwapSkipsNegativeInfinityPublishedChain(t *testing.T) {
	cold, _ := buildTestChain(1.0, -1.0)
	hot, _ := buildTestChain(0.5, -1.0)
	cold.Advance()
	// hot never advanced: its published value defaults to 0, so force -Inf
	// directly to exercise the guard without faking a full graph evaluation.
	hot.mu.Lock()
	hot.published = math.Inf(-1)
	hot.mu.Unlock()

	ladder := ladderFromChains([]*Chain{cold, hot})
	rng := rand.New(rand.NewSource(3))
	ladder.AttemptSwaps(rng)

	if cold.Beta.Value() != 1.0 || hot.Beta.Value() != 0.5 {
		t.Fatalf("expected no swap when one chain's published value is -Inf")
	}
}

// ladderFromChains builds a Ladder directly from already-constructed chains,
// the shape AttemptSwaps tests need instead of NewLadder's build-callback
// form.
func ladderFromChains(chains []*Chain) *Ladder {
	l := NewLadder(len(chains), 1.0, func(k int, beta float64) *Chain {
		return chains[k]
	})
	return l
}
