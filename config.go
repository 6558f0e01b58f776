package plasmonet

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// RunConfig is the top level TOML configuration for one inference run: how
// long to sample, how the scheduler and replica ladder are shaped, the
// error-rate and prior hyperparameters the likelihood needs, and where
// output goes. Mirrors the teacher's EvoEpiConfig in shape (a struct of
// `toml`-tagged sub-sections plus a Validate method) with sections renamed
// to this model's parameters.
type RunConfig struct {
	Run        *runParams       `toml:"run"`
	Scheduler  *schedulerParams `toml:"scheduler"`
	Replica    *replicaParams   `toml:"replica_exchange"`
	ErrorRates *errorRateParams `toml:"error_rates"`
	Priors     *priorParams     `toml:"priors"`
	Logging    *loggingParams   `toml:"logging"`
	Kernels    []*kernelParams  `toml:"kernel"`

	validated bool
}

type runParams struct {
	InputPath string `toml:"input_path"`
	Iterations int   `toml:"iterations"`
	RandomSeed int64  `toml:"random_seed"`
}

func (c *runParams) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf(InvalidStringParameterError, "input_path", c.InputPath, "must not be empty")
	}
	if c.Iterations < 1 {
		return fmt.Errorf(InvalidIntParameterError, "iterations", c.Iterations, "must be greater than or equal to 1")
	}
	return nil
}

type schedulerParams struct {
	SamplesPerStep int `toml:"samples_per_step"`
}

func (c *schedulerParams) Validate() error {
	if c.SamplesPerStep < 1 {
		return fmt.Errorf(InvalidIntParameterError, "samples_per_step", c.SamplesPerStep, "must be greater than or equal to 1")
	}
	return nil
}

// replicaParams shapes the geometric temperature ladder beta_k = ratio^k
// for k = 0..NumChains-1, and how often adjacent chains attempt a swap.
type replicaParams struct {
	NumChains int     `toml:"num_chains"`
	Ratio     float64 `toml:"ratio"`
	SwapEvery int     `toml:"swap_every"`
}

func (c *replicaParams) Validate() error {
	if c.NumChains < 1 {
		return fmt.Errorf(InvalidIntParameterError, "num_chains", c.NumChains, "must be greater than or equal to 1")
	}
	if c.NumChains > 1 && (c.Ratio <= 0 || c.Ratio >= 1) {
		return fmt.Errorf(InvalidFloatParameterError, "ratio", c.Ratio, "must lie strictly between 0 and 1")
	}
	if c.SwapEvery < 1 {
		return fmt.Errorf(InvalidIntParameterError, "swap_every", c.SwapEvery, "must be greater than or equal to 1")
	}
	return nil
}

type errorRateParams struct {
	FalseNegativeRate float64 `toml:"false_negative_rate"`
	FalsePositiveRate float64 `toml:"false_positive_rate"`
}

func (c *errorRateParams) Validate() error {
	if c.FalseNegativeRate <= 0 || c.FalseNegativeRate >= 1 {
		return fmt.Errorf(InvalidFloatParameterError, "false_negative_rate", c.FalseNegativeRate, "must lie strictly between 0 and 1")
	}
	if c.FalsePositiveRate <= 0 || c.FalsePositiveRate >= 1 {
		return fmt.Errorf(InvalidFloatParameterError, "false_positive_rate", c.FalsePositiveRate, "must lie strictly between 0 and 1")
	}
	return nil
}

// priorParams names the hyperparameters of the Beta/Gamma priors wired in
// priors.go, keyed by the parameter they govern.
type priorParams struct {
	CoiShape      float64 `toml:"coi_gamma_shape"`
	CoiRate       float64 `toml:"coi_gamma_rate"`
	GeomProbAlpha float64 `toml:"geom_prob_beta_alpha"`
	GeomProbBeta  float64 `toml:"geom_prob_beta_beta"`
	DurationLower float64 `toml:"duration_lower"`
	DurationUpper float64 `toml:"duration_upper"`
}

func (c *priorParams) Validate() error {
	if c.CoiShape <= 0 {
		return fmt.Errorf(InvalidFloatParameterError, "coi_gamma_shape", c.CoiShape, "must be greater than 0")
	}
	if c.CoiRate <= 0 {
		return fmt.Errorf(InvalidFloatParameterError, "coi_gamma_rate", c.CoiRate, "must be greater than 0")
	}
	if c.GeomProbAlpha <= 0 || c.GeomProbBeta <= 0 {
		return fmt.Errorf(InvalidFloatParameterError, "geom_prob_beta_alpha/beta", c.GeomProbAlpha, "must be greater than 0")
	}
	if c.DurationLower >= c.DurationUpper {
		return fmt.Errorf(InvalidFloatParameterError, "duration_lower", c.DurationLower, "must be less than duration_upper")
	}
	return nil
}

type loggingParams struct {
	Backend    string `toml:"backend"` // csv, sqlite
	OutputPath string `toml:"output_path"`
	LogFreq    int    `toml:"log_freq"`
}

func (c *loggingParams) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "csv":
	case "sqlite":
	default:
		return fmt.Errorf(InvalidStringParameterError, "backend", c.Backend, "must be one of csv, sqlite")
	}
	if c.OutputPath == "" {
		return fmt.Errorf(InvalidStringParameterError, "output_path", c.OutputPath, "must not be empty")
	}
	if c.LogFreq < 1 {
		return fmt.Errorf(InvalidIntParameterError, "log_freq", c.LogFreq, "must be greater than or equal to 1")
	}
	return nil
}

// kernelParams registers one proposal kernel with the scheduler: its
// selection weight and the iteration window across which its adaptive
// variance is still allowed to tune, mirroring the teacher's
// ModelNine/SampleScheduler.h registration fields (weight, adaptation
// start/end).
type kernelParams struct {
	Kind            string  `toml:"kind"` // bounded_walk, discrete_walk, simplex_salt, bit_flip, zanella, joint_genotype_time
	Weight          float64 `toml:"weight"`
	AdaptationStart int     `toml:"adaptation_start"`
	AdaptationEnd   int     `toml:"adaptation_end"`
}

func (c *kernelParams) Validate() error {
	switch c.Kind {
	case "bounded_walk", "discrete_walk", "simplex_salt", "bit_flip", "zanella", "joint_genotype_time":
	default:
		return fmt.Errorf(InvalidStringParameterError, "kind", c.Kind, "is not a recognized kernel kind")
	}
	if c.Weight <= 0 {
		return fmt.Errorf(InvalidFloatParameterError, "weight", c.Weight, "must be greater than 0")
	}
	if c.AdaptationEnd < c.AdaptationStart {
		return fmt.Errorf(InvalidIntParameterError, "adaptation_end", c.AdaptationEnd, "must be greater than or equal to adaptation_start")
	}
	return nil
}

// LoadRunConfig decodes and validates the TOML configuration at path,
// following the teacher's toml.DecodeFile(path, spec) idiom.
func LoadRunConfig(path string) (*RunConfig, error) {
	conf := new(RunConfig)
	_, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding run configuration %s", path)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating run configuration")
	}
	return conf, nil
}

// Validate checks every section of the configuration, following the
// teacher's EvoEpiConfig.Validate sequencing: each sub-section validates
// itself, then cross-section constraints are checked last.
func (c *RunConfig) Validate() error {
	if err := c.Run.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Replica.Validate(); err != nil {
		return err
	}
	if err := c.ErrorRates.Validate(); err != nil {
		return err
	}
	if err := c.Priors.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if len(c.Kernels) == 0 {
		return fmt.Errorf(InvalidIntParameterError, "kernel", 0, "at least one kernel must be registered")
	}
	for _, k := range c.Kernels {
		if err := k.Validate(); err != nil {
			return errors.Wrapf(err, "validating kernel %q", k.Kind)
		}
	}
	c.validated = true
	return nil
}
