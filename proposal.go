package plasmonet

import (
	"math"
	"math/rand"

	"github.com/segmentio/ksuid"
)

// Kernel is a single Metropolis-Hastings proposal over one or more
// parameters. Every kernel follows the same protocol: read L0, save state,
// propose, read L1, accept or restore. Step returns whether the proposal
// was accepted.
type Kernel interface {
	ID() string
	Step(rng *rand.Rand) bool
	Acceptances() int
	Rejections() int
}

// AcceptanceRate returns a kernel's empirical acceptance rate, or 0 if it
// has never run.
func AcceptanceRate(k Kernel) float64 {
	total := k.Acceptances() + k.Rejections()
	if total == 0 {
		return 0
	}
	return float64(k.Acceptances()) / float64(total)
}

// AdaptiveVariance tracks Sigma, which the kernels use as the variance (not
// the standard deviation) of their Gaussian proposal step, adjusted toward a
// target acceptance rate after every proposal within an adaptation window;
// outside the window, sigma is frozen so detailed balance holds exactly in
// the long run (an adapting kernel is only asymptotically reversible).
type AdaptiveVariance struct {
	Sigma                        float64
	Min, Max                     float64
	TargetRate                   float64
	WindowStart, WindowEnd       int
	n                            int
}

// NewAdaptiveVariance creates a step-size controller starting at sigma0,
// adapting toward targetRate within [windowStart, windowEnd].
func NewAdaptiveVariance(sigma0, min, max, targetRate float64, windowStart, windowEnd int) *AdaptiveVariance {
	return &AdaptiveVariance{
		Sigma: sigma0, Min: min, Max: max,
		TargetRate: targetRate, WindowStart: windowStart, WindowEnd: windowEnd,
	}
}

// Update adjusts Sigma given whether the most recent proposal at iteration
// iter was accepted, following
// sigma <- clamp(sigma + (acceptRate-targetRate)/sqrt(n+1), min, max).
func (a *AdaptiveVariance) Update(iter int, accepted bool, acceptRate float64) {
	if iter < a.WindowStart || (a.WindowEnd > 0 && iter > a.WindowEnd) {
		return
	}
	a.n++
	delta := (acceptRate - a.TargetRate) / math.Sqrt(float64(a.n+1))
	sigma := a.Sigma + delta
	if sigma < a.Min {
		sigma = a.Min
	}
	if sigma > a.Max {
		sigma = a.Max
	}
	a.Sigma = sigma
}

// metropolisAccept draws u ~ Uniform(0,1) and reports whether
// log(u) <= l1 - l0 + logAdjustment.
func metropolisAccept(rng *rand.Rand, l0, l1, logAdjustment float64) bool {
	u := rng.Float64()
	return math.Log(u) <= l1-l0+logAdjustment
}

// newStateID generates a fresh opaque checkpoint key for one kernel step.
func newStateID() ksuid.KSUID {
	return ksuid.New()
}

// counters is embedded by every concrete kernel to track acceptance stats
// without repeating the bookkeeping.
type counters struct {
	accepted, rejected int
}

func (c *counters) record(accept bool) {
	if accept {
		c.accepted++
	} else {
		c.rejected++
	}
}

func (c *counters) Acceptances() int { return c.accepted }
func (c *counters) Rejections() int  { return c.rejected }
