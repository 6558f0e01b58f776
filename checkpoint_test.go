package plasmonet

import (
	"testing"
)

func TestLoadCheckpointRoundTripsCSVLoggerOutput(t *testing.T) {
	dir := t.TempDir()
	ctx, err := NewOutputContext(dir)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	logger := NewCSVLogger(ctx)

	if err := logger.LogLikelihood(1, -10.0); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := logger.LogLikelihood(2, -9.5); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := logger.LogScalar("infection_duration", "a", 2, 3.5); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := logger.LogScalar("", "coi", 2, 2.2); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	freqs := NewSimplexFrom([]float64{0.25, 0.25, 0.25, 0.25})
	if err := logger.LogAlleleFrequencies("msp1", 2, freqs); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	g4 := sampleGenotype(4, 0, 2)
	if err := logger.LogGenotype("a", "msp1", 2, g4); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := logger.LogLatentParentGenotype(exogenousSourceToken, "msp1", 2, g4); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("unexpected error closing logger: %s", err)
	}

	state, err := LoadCheckpoint(dir)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if state.Iteration != 2 {
		t.Fatalf("expected checkpoint iteration 2 (last likelihood row), got %d", state.Iteration)
	}
	if got := state.Scalars["infection_duration/a"]; got != 3.5 {
		t.Fatalf("expected restored infection_duration/a 3.5, got %f", got)
	}
	if got := state.Scalars["coi"]; got != 2.2 {
		t.Fatalf("expected restored coi 2.2, got %f", got)
	}
	freq, ok := state.AlleleFrequencies["msp1"]
	if !ok || freq.Len() != 4 {
		t.Fatalf("expected a restored 4-coordinate msp1 allele-frequency simplex, got %v (ok=%v)", freq, ok)
	}
	gotGenotype, ok := state.Genotypes["a"]["msp1"]
	if !ok || gotGenotype.String() != g4.String() {
		t.Fatalf("expected restored genotype %s for a/msp1, got %v (ok=%v)", g4.String(), gotGenotype, ok)
	}
	latent, ok := state.LatentParents[exogenousSourceToken]["msp1"]
	if !ok || latent.String() != g4.String() {
		t.Fatalf("expected restored exogenous latent-parent genotype, got %v (ok=%v)", latent, ok)
	}
}

func TestLoadCheckpointOnEmptyDirectoryIsZeroValue(t *testing.T) {
	dir := t.TempDir()
	state, err := LoadCheckpoint(dir)
	if err != nil {
		t.Fatalf("unexpected error for an empty output directory: %s", err)
	}
	if state.Iteration != 0 {
		t.Fatalf("expected iteration 0 for a never-logged run, got %d", state.Iteration)
	}
	if len(state.Scalars) != 0 {
		t.Fatalf("expected no scalars for a never-logged run, got %d", len(state.Scalars))
	}
}
