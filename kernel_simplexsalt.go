package plasmonet

import (
	"math"
	"math/rand"
)

// SimplexSALT proposes a new allele-frequency simplex by multiplying one
// randomly chosen coordinate by e^eps (eps Gaussian) and renormalizing the
// rest proportionally, the scale-invariant log-ratio transform (SALT).
// Because v_i' = v_i*e^eps / (1 - v_i + v_i*e^eps) satisfies
// logit(v_i') = logit(v_i) + eps exactly (the renormalized remainder
// keeps every other coordinate's relative share fixed), this is precisely
// the bounded Gaussian walk's logit move applied to one coordinate with
// bounds (0, 1); its MH Jacobian adjustment is the same
// log((x'-0)(1-x')) - log((x-0)(1-x)) term.
type SimplexSALT struct {
	counters
	id       string
	param    *Parameter[Simplex]
	target   FloatNode
	variance *AdaptiveVariance
	iter     int
}

// NewSimplexSALT registers a SALT kernel over an allele-frequency simplex.
func NewSimplexSALT(id string, param *Parameter[Simplex], target FloatNode, variance *AdaptiveVariance) *SimplexSALT {
	return &SimplexSALT{id: id, param: param, target: target, variance: variance}
}

// ID returns the kernel's logging identifier.
func (k *SimplexSALT) ID() string { return k.id }

// Step runs one proposal: save, propose, evaluate, accept or restore.
func (k *SimplexSALT) Step(rng *rand.Rand) bool {
	g := k.param.graph
	id := newStateID()
	l0 := k.target.Value()
	g.SaveState(k.param.Handle(), id)

	curr := k.param.Value()
	idx := rng.Intn(curr.Len())
	vi := curr.At(idx)

	eps := rng.NormFloat64() * math.Sqrt(k.variance.Sigma)
	unnorm := vi * math.Exp(eps)
	total := 1 - vi + unnorm
	newVi := unnorm / total

	adj := logitAdjustment(vi, newVi, 0, 1)

	proposal := curr.Clone()
	proposal.SetIndex(idx, newVi)
	k.param.SetValue(proposal)

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
