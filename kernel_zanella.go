package plasmonet

import (
	"math"
	"math/rand"

	"github.com/segmentio/ksuid"
)

// ZanellaInformed proposes a single-bit flip on a Genotype parameter,
// chosen from a categorical distribution over every valid one-bit
// neighbor weighted by that neighbor's half-log-likelihood, rather than
// uniformly at random. The MH correction uses the Zanella balancing
// function evaluated symmetrically at both endpoints' neighborhoods.
type ZanellaInformed struct {
	counters
	id     string
	param  *Parameter[Genotype]
	target FloatNode
}

// NewZanellaInformed registers a Zanella-informed bit-flip kernel over
// param.
func NewZanellaInformed(id string, param *Parameter[Genotype], target FloatNode) *ZanellaInformed {
	return &ZanellaInformed{id: id, param: param, target: target}
}

// ID returns the kernel's logging identifier.
func (k *ZanellaInformed) ID() string { return k.id }

// neighborhoodLogLik evaluates, for each allele index, half the log-
// likelihood of the genotype obtained by flipping that allele, or -Inf if
// flipping it would empty the bitset.
func (k *ZanellaInformed) neighborhoodLogLik(g *Graph, id stateToken) []float64 {
	curr := k.param.Value()
	n := curr.TotalAlleles()
	neighborhood := make([]float64, n)
	for i := 0; i < n; i++ {
		tmp := curr
		tmp.Flip(i)
		if tmp.TotalPositiveCount() == 0 {
			neighborhood[i] = math.Inf(-1)
			continue
		}
		g.SaveState(k.param.Handle(), id.flip)
		k.param.SetValue(tmp)
		neighborhood[i] = k.target.Value() * 0.5
		g.RestoreState(k.param.Handle(), id.flip)
	}
	return neighborhood
}

// stateToken bundles the two checkpoint ids a Zanella step needs: one for
// the outer save/restore around the whole proposal, one reused internally
// while probing each neighbor.
type stateToken struct {
	outer, flip ksuid.KSUID
}

// Step runs one proposal following ZanellaAllelesBitSetSampler::update.
func (k *ZanellaInformed) Step(rng *rand.Rand) bool {
	g := k.param.graph
	tok := stateToken{outer: newStateID(), flip: newStateID()}

	l0 := k.target.Value()
	g.SaveState(k.param.Handle(), tok.outer)

	curr := k.param.Value()
	currNeighborhood := k.neighborhoodLogLik(g, tok)
	currSum := LogSumExp(currNeighborhood)

	if math.IsInf(currSum, -1) {
		k.record(false)
		g.RestoreState(k.param.Handle(), tok.outer)
		return false
	}

	idx := sampleCategorical(rng, ExpNormalize(currNeighborhood))
	prop := curr
	prop.Flip(idx)
	k.param.SetValue(prop)

	propLik := k.target.Value()
	if math.IsInf(propLik, -1) {
		k.record(false)
		g.RestoreState(k.param.Handle(), tok.outer)
		return false
	}

	propNeighborhood := k.neighborhoodLogLik(g, tok)
	propSum := LogSumExp(propNeighborhood)

	logAcceptRatio := 0.5*propLik + currSum - 0.5*l0 - propSum
	u := rng.Float64()
	accept := math.Log(u) <= logAcceptRatio

	if accept {
		g.AcceptState(k.param.Handle(), tok.outer)
	} else {
		g.RestoreState(k.param.Handle(), tok.outer)
	}
	k.record(accept)
	return accept
}

// sampleCategorical draws an index from a normalized probability vector by
// linear scan against the cumulative sum, matching the original
// ZanellaAllelesBitSetSampler::sampleProposal's cumulative-sum draw.
func sampleCategorical(rng *rand.Rand, probs []float64) int {
	u := rng.Float64()
	cumsum := 0.0
	for i, p := range probs {
		cumsum += p
		if u < cumsum {
			return i
		}
	}
	return len(probs) - 1
}
