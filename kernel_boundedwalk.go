package plasmonet

import (
	"math"
	"math/rand"
)

// BoundedGaussianWalk proposes a new value for a scalar parameter
// constrained to (lower, upper) by taking a Gaussian step in logit space
// and mapping back, so every proposal automatically lies in bounds with no
// rejection-by-construction. The MH adjustment corrects for the
// logit transform's non-uniform Jacobian across the interval.
type BoundedGaussianWalk struct {
	counters
	id           string
	param        *Parameter[float64]
	target       FloatNode
	lower, upper float64
	variance     *AdaptiveVariance
	iter         int
}

// NewBoundedGaussianWalk registers a bounded random-walk kernel over param.
func NewBoundedGaussianWalk(id string, param *Parameter[float64], target FloatNode, lower, upper float64, variance *AdaptiveVariance) *BoundedGaussianWalk {
	return &BoundedGaussianWalk{id: id, param: param, target: target, lower: lower, upper: upper, variance: variance}
}

// ID returns the kernel's logging identifier.
func (k *BoundedGaussianWalk) ID() string { return k.id }

// logitAdjustment computes log((x'-a)(b-x')) - log((x-a)(b-x)), the
// Jacobian correction for the logit-space random walk.
func logitAdjustment(curr, proposed, lower, upper float64) float64 {
	return math.Log(proposed-lower) + math.Log(upper-proposed) -
		math.Log(curr-lower) - math.Log(upper-curr)
}

// sampleBoundedWalk draws a logit-space Gaussian step of the given
// variance around curr, constrained to (lower, upper).
func sampleBoundedWalk(rng *rand.Rand, curr, variance, lower, upper float64) float64 {
	eps := rng.NormFloat64() * math.Sqrt(variance)
	unconstrained := math.Log(curr-lower) - math.Log(upper-curr)
	expProp := math.Exp(eps + unconstrained)
	return clamp((upper*expProp+lower)/(expProp+1), lower, upper)
}

// Step runs one proposal: save, propose, evaluate, accept or restore.
func (k *BoundedGaussianWalk) Step(rng *rand.Rand) bool {
	g := k.param.graph
	id := newStateID()
	l0 := k.target.Value()
	g.SaveState(k.param.Handle(), id)

	curr := k.param.Value()
	prop := sampleBoundedWalk(rng, curr, k.variance.Sigma, k.lower, k.upper)
	adj := logitAdjustment(curr, prop, k.lower, k.upper)
	k.param.SetValue(prop)

	l1 := k.target.Value()
	accept := metropolisAccept(rng, l0, l1, adj)
	if accept {
		g.AcceptState(k.param.Handle(), id)
	} else {
		g.RestoreState(k.param.Handle(), id)
	}

	k.iter++
	k.record(accept)
	k.variance.Update(k.iter, accept, AcceptanceRate(k))
	return accept
}
