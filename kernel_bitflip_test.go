package plasmonet

import (
	"math/rand"
	"testing"
)

func TestBitFlipNeverEmptiesOrExceedsCap(t *testing.T) {
	g := NewGraph()
	param := NewParameter(g, "latent", sampleGenotype(4, 0))
	target := NewParameter(g, "target", 0.0)
	kernel := NewBitFlip("latent", param, target, 2)

	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		kernel.Step(rng)
		v := param.Value()
		if v.TotalPositiveCount() == 0 || v.TotalPositiveCount() > 2 {
			t.Fatalf("genotype %s violates the [1, maxCOI] allele-count invariant", v.String())
		}
	}
}

func TestBitFlipSampleProposalRespectsCap(t *testing.T) {
	g := NewGraph()
	param := NewParameter(g, "latent", sampleGenotype(4, 0, 1))
	target := NewParameter(g, "target", 0.0)
	kernel := NewBitFlip("latent", param, target, 2)

	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 100; i++ {
		prop := kernel.sampleProposal(rng, param.Value())
		if prop.TotalPositiveCount() == 0 || prop.TotalPositiveCount() > 2 {
			t.Fatalf("sampled proposal %s violates the cap", prop.String())
		}
	}
}
