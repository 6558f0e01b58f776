package plasmonet

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCoiCountTableSumsToOne(t *testing.T) {
	table := coiCountTable(0.5)
	sum := 0.0
	for _, p := range table {
		sum += p
	}
	if !almostEqual(sum, 1.0) {
		t.Fatalf("expected the coi-count table to sum to 1, got %f", sum)
	}
	if table[0] != 0 {
		t.Fatalf("expected index 0 (unused, coi_count >= 1) to be 0, got %f", table[0])
	}
}

func TestInitialCoiCountPicksMode(t *testing.T) {
	table := []float64{0, 0.1, 0.6, 0.3}
	if got := initialCoiCount(table); got != 2 {
		t.Fatalf("expected the mode index 2, got %d", got)
	}
}

func TestCoiCountPriorLogDensityMatchesTable(t *testing.T) {
	g := NewGraph()
	target := NewParameter(g, "coi_count", 2)
	table := []float64{0, 0.25, 0.5, 0.25}
	prior := NewCoiCountPrior(g, target, table)

	if got := prior.Value(); !almostEqual(got, math.Log(0.5)) {
		t.Fatalf("expected log(0.5), got %f", got)
	}

	target.SetValue(10) // out of table range
	if got := prior.Value(); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf for an out-of-range coi_count, got %f", got)
	}
}

func writeDomainJSONForBuild(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "domain.json")
	body := `
{
  "loci": [{"locus": "msp1", "num_alleles": 4}],
  "nodes": [
    {"id": "a", "observation_time": 0, "symptomatic": true,
     "observed_genotype": [{"locus": "msp1", "genotype": "1000"}],
     "disallowed_parents": []},
    {"id": "b", "observation_time": 5, "symptomatic": true,
     "observed_genotype": [{"locus": "msp1", "genotype": "1100"}],
     "disallowed_parents": []}
  ],
  "allele_frequencies": [{"locus": "msp1", "frequencies": [0.4, 0.3, 0.2, 0.1]}]
}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing domain json: %s", err)
	}
	return path
}

func buildTestRunConfig(inputPath string) *RunConfig {
	conf := validConfig()
	conf.Run.InputPath = inputPath
	return conf
}

func TestBuildChainModelWiresEveryEventAndParameter(t *testing.T) {
	path := writeDomainJSONForBuild(t)
	conf := buildTestRunConfig(path)

	m, err := BuildChainModel(conf, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(m.ParentSets) != 2 {
		t.Fatalf("expected 2 parent sets, got %d", len(m.ParentSets))
	}
	if len(m.CoiCounts) != 2 || len(m.EpsPos) != 2 || len(m.EpsNeg) != 2 {
		t.Fatalf("expected per-event coi_count/eps_pos/eps_neg parameters for both events")
	}
	if got := m.Likelihood.Value(); got != got { // NaN check
		t.Fatalf("expected a well-defined initial likelihood, got NaN")
	}
}

func TestBuildChainModelPropagatesLoadDomainError(t *testing.T) {
	conf := buildTestRunConfig(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := BuildChainModel(conf, 1.0); err == nil {
		t.Fatalf("expected BuildChainModel to propagate a domain-loading error")
	}
}

func TestApplyCheckpointOverwritesRecordedScalarsAndGenotypes(t *testing.T) {
	path := writeDomainJSONForBuild(t)
	conf := buildTestRunConfig(path)
	m, err := BuildChainModel(conf, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	newGenotype := sampleGenotype(4, 1, 2)
	state := &RunState{
		Scalars: map[string]float64{
			"infection_duration/a": 3.5,
			"eps_pos/a":            0.2,
			"eps_neg/a":            0.3,
			"coi_count/a":          4,
			"coi":                  5.0,
			"geom_prob":            0.7,
		},
		Genotypes: map[string]map[string]Genotype{
			"a": {"msp1": newGenotype},
		},
		AlleleFrequencies: map[string]Simplex{},
	}

	ApplyCheckpoint(m, state)

	a := m.Domain.EventByID["a"]
	if a.Duration().Value() != 3.5 {
		t.Fatalf("expected restored duration 3.5, got %f", a.Duration().Value())
	}
	if m.EpsPos["a"].Value() != 0.2 {
		t.Fatalf("expected restored eps_pos 0.2, got %f", m.EpsPos["a"].Value())
	}
	if m.EpsNeg["a"].Value() != 0.3 {
		t.Fatalf("expected restored eps_neg 0.3, got %f", m.EpsNeg["a"].Value())
	}
	if m.CoiCounts["a"].Value() != 4 {
		t.Fatalf("expected restored coi_count 4, got %d", m.CoiCounts["a"].Value())
	}
	if m.Coi.Value() != 5.0 {
		t.Fatalf("expected restored coi 5.0, got %f", m.Coi.Value())
	}
	if m.GeomProb.Value() != 0.7 {
		t.Fatalf("expected restored geom_prob 0.7, got %f", m.GeomProb.Value())
	}
	if got := a.LatentGenotype("msp1").Value(); got.String() != newGenotype.String() {
		t.Fatalf("expected restored latent genotype %s, got %s", newGenotype.String(), got.String())
	}
}

func TestApplyCheckpointIsNoOpForNilState(t *testing.T) {
	path := writeDomainJSONForBuild(t)
	conf := buildTestRunConfig(path)
	m, err := BuildChainModel(conf, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	before := m.Coi.Value()
	ApplyCheckpoint(m, nil)
	if m.Coi.Value() != before {
		t.Fatalf("expected a nil checkpoint state to leave the model untouched")
	}
}
