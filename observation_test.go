package plasmonet

import (
	"math"
	"testing"
)

func TestCountAllelesMatchesGenotypeComparisons(t *testing.T) {
	latent := sampleGenotype(4, 0, 1)
	observed := sampleGenotype(4, 1, 2)

	counts := CountAlleles(latent, observed)
	if counts.TruePositive != TruePositiveCount(latent, observed) {
		t.Fatalf("true positive mismatch")
	}
	if counts.TrueNegative != TrueNegativeCount(latent, observed) {
		t.Fatalf("true negative mismatch")
	}
	if counts.FalsePositive != FalsePositiveCount(latent, observed) {
		t.Fatalf("false positive mismatch")
	}
	if counts.FalseNegative != FalseNegativeCount(latent, observed) {
		t.Fatalf("false negative mismatch")
	}
}

func TestObservationProcessMatchesDirectFormula(t *testing.T) {
	g := NewGraph()
	latentParam := NewParameter(g, "latent", sampleGenotype(4, 0, 1))
	observed := sampleGenotype(4, 0, 2)
	epsPos := NewParameter(g, "eps_pos", 0.2)
	epsNeg := NewParameter(g, "eps_neg", 0.1)

	op := NewObservationProcess(g, latentParam, observed, epsPos, epsNeg)

	counts := CountAlleles(latentParam.Value(), observed)
	n := float64(observed.TotalAlleles())
	posRate := epsPos.Value() / n
	negRate := epsNeg.Value() / n
	want := float64(counts.TruePositive)*math.Log1p(-posRate) +
		float64(counts.TrueNegative)*math.Log1p(-negRate) +
		float64(counts.FalsePositive)*math.Log(posRate) +
		float64(counts.FalseNegative)*math.Log(negRate)

	if got := op.Value(); !almostEqual(got, want) {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestObservationProcessRecomputesWhenLatentChanges(t *testing.T) {
	g := NewGraph()
	latentParam := NewParameter(g, "latent", sampleGenotype(4, 0))
	observed := sampleGenotype(4, 0)
	epsPos := NewParameter(g, "eps_pos", 0.1)
	epsNeg := NewParameter(g, "eps_neg", 0.1)

	op := NewObservationProcess(g, latentParam, observed, epsPos, epsNeg)
	before := op.Value()

	latentParam.SetValue(sampleGenotype(4, 1))
	after := op.Value()

	if almostEqual(before, after) {
		t.Fatalf("expected the observation term to change after the latent genotype changed")
	}
}

func TestObservationProcessRecomputesWhenErrorRateChanges(t *testing.T) {
	g := NewGraph()
	latentParam := NewParameter(g, "latent", sampleGenotype(4, 0))
	observed := sampleGenotype(4, 0)
	epsPos := NewParameter(g, "eps_pos", 0.1)
	epsNeg := NewParameter(g, "eps_neg", 0.1)

	op := NewObservationProcess(g, latentParam, observed, epsPos, epsNeg)
	before := op.Value()

	epsNeg.SetValue(0.4)
	after := op.Value()

	if almostEqual(before, after) {
		t.Fatalf("expected the observation term to change after an error rate changed")
	}
}
