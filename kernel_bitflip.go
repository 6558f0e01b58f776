package plasmonet

import (
	"math"
	"math/rand"
)

// BitFlip proposes a single-allele flip on a Genotype parameter holding at
// most maxCOI set bits (alleles present), redrawing the index whenever a
// flip would leave the bitset empty or over the cap. At the boundary where
// the current genotype has exactly one allele present, only N-1 of the N
// possible flips are valid proposals (flipping the sole set bit would
// empty the set), so moves away from that boundary and back carry an
// asymmetric MH correction of ±log(N)-log(N-1).
type BitFlip struct {
	counters
	id      string
	param   *Parameter[Genotype]
	target  FloatNode
	maxCOI  int
}

// NewBitFlip registers a single-bit allele-flip kernel over param.
func NewBitFlip(id string, param *Parameter[Genotype], target FloatNode, maxCOI int) *BitFlip {
	return &BitFlip{id: id, param: param, target: target, maxCOI: maxCOI}
}

// ID returns the kernel's logging identifier.
func (k *BitFlip) ID() string { return k.id }

func (k *BitFlip) sampleProposal(rng *rand.Rand, curr Genotype) Genotype {
	n := curr.TotalAlleles()
	tmp := curr
	tmp.Flip(rng.Intn(n))
	for tmp.TotalPositiveCount() == 0 || tmp.TotalPositiveCount() > k.maxCOI {
		tmp = curr
		tmp.Flip(rng.Intn(n))
	}
	return tmp
}

// Step runs one proposal: save, propose, evaluate, accept or restore.
func (k *BitFlip) Step(rng *rand.Rand) bool {
	g := k.param.graph
	id := newStateID()
	l0 := k.target.Value()
	g.SaveState(k.param.Handle(), id)

	curr := k.param.Value()
	prop := k.sampleProposal(rng, curr)

	adj := 0.0
	n := curr.TotalAlleles()
	switch {
	case curr.TotalPositiveCount() == 1:
		adj = math.Log(float64(n)) - math.Log(float64(n-1))
	case prop.TotalPositiveCount() == 1:
		adj = math.Log(float64(n-1)) - math.Log(float64(n))
	}

	k.param.SetValue(prop)

	l1 := k.target.Value()
	accept := metropolisAccept(rng, l0, l1, adj)
	if accept {
		g.AcceptState(k.param.Handle(), id)
	} else {
		g.RestoreState(k.param.Handle(), id)
	}

	k.record(accept)
	return accept
}
