package plasmonet

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing temp config: %s", err)
	}
	return path
}

const validConfigBody = `
[run]
input_path = "domain.json"
iterations = 1000
random_seed = 1

[scheduler]
samples_per_step = 4

[replica_exchange]
num_chains = 2
ratio = 0.5
swap_every = 10

[error_rates]
false_negative_rate = 0.05
false_positive_rate = 0.05

[priors]
coi_gamma_shape = 2.0
coi_gamma_rate = 1.0
geom_prob_beta_alpha = 1.0
geom_prob_beta_beta = 1.0
duration_lower = 0.0
duration_upper = 30.0

[logging]
backend = "csv"
output_path = "out"
log_freq = 10

[[kernel]]
kind = "bounded_walk"
weight = 1.0
adaptation_start = 0
adaptation_end = 500
`

func TestLoadRunConfigAcceptsValidDocument(t *testing.T) {
	path := writeTempConfig(t, validConfigBody)
	conf, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if conf.Run.Iterations != 1000 {
		t.Fatalf("expected 1000 iterations, got %d", conf.Run.Iterations)
	}
	if len(conf.Kernels) != 1 || conf.Kernels[0].Kind != "bounded_walk" {
		t.Fatalf("expected one bounded_walk kernel entry, got %+v", conf.Kernels)
	}
}

func TestLoadRunConfigRejectsMissingInputPath(t *testing.T) {
	body := `
[run]
input_path = ""
iterations = 1000
random_seed = 1
[scheduler]
samples_per_step = 1
[replica_exchange]
num_chains = 1
ratio = 0.5
swap_every = 1
[error_rates]
false_negative_rate = 0.05
false_positive_rate = 0.05
[priors]
coi_gamma_shape = 1
coi_gamma_rate = 1
geom_prob_beta_alpha = 1
geom_prob_beta_beta = 1
duration_lower = 0
duration_upper = 1
[logging]
backend = "csv"
output_path = "out"
log_freq = 1
[[kernel]]
kind = "bit_flip"
weight = 1.0
adaptation_start = 0
adaptation_end = 0
`
	path := writeTempConfig(t, body)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatalf("expected an error for an empty input_path")
	}
}

func TestLoadRunConfigRejectsRatioOutOfRangeWithMultipleChains(t *testing.T) {
	conf := validConfig()
	conf.Replica.NumChains = 3
	conf.Replica.Ratio = 1.5
	if err := conf.Validate(); err == nil {
		t.Fatalf("expected an error for a replica ratio outside (0, 1)")
	}
}

func TestLoadRunConfigRejectsUnrecognizedKernelKind(t *testing.T) {
	conf := validConfig()
	conf.Kernels[0].Kind = "not_a_real_kernel"
	if err := conf.Validate(); err == nil {
		t.Fatalf("expected an error for an unrecognized kernel kind")
	}
}

func TestLoadRunConfigRejectsZeroKernels(t *testing.T) {
	conf := validConfig()
	conf.Kernels = nil
	if err := conf.Validate(); err == nil {
		t.Fatalf("expected an error when no kernel is registered")
	}
}

func TestLoadRunConfigRejectsUnknownLoggingBackend(t *testing.T) {
	conf := validConfig()
	conf.Logging.Backend = "parquet"
	if err := conf.Validate(); err == nil {
		t.Fatalf("expected an error for an unrecognized logging backend")
	}
}

// validConfig builds a RunConfig equivalent to validConfigBody directly, so
// field-level mutation tests don't need to round-trip through TOML.
func validConfig() *RunConfig {
	return &RunConfig{
		Run:        &runParams{InputPath: "domain.json", Iterations: 1000, RandomSeed: 1},
		Scheduler:  &schedulerParams{SamplesPerStep: 4},
		Replica:    &replicaParams{NumChains: 2, Ratio: 0.5, SwapEvery: 10},
		ErrorRates: &errorRateParams{FalseNegativeRate: 0.05, FalsePositiveRate: 0.05},
		Priors: &priorParams{
			CoiShape: 2.0, CoiRate: 1.0,
			GeomProbAlpha: 1.0, GeomProbBeta: 1.0,
			DurationLower: 0.0, DurationUpper: 30.0,
		},
		Logging: &loggingParams{Backend: "csv", OutputPath: "out", LogFreq: 10},
		Kernels: []*kernelParams{{Kind: "bounded_walk", Weight: 1.0, AdaptationStart: 0, AdaptationEnd: 500}},
	}
}
