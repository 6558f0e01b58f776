package plasmonet

import "math"

// MaxParentSetSize bounds how many candidate parents the node-transmission
// term enumerates jointly, mirroring the compile-time MAX_COI bound the
// original model templates its transmission process on.
const MaxParentSetSize = 4

// SourceTransmission scores a child genotype as having arisen exogenously:
// each locus allele is treated as independently present with probability
// `1-(1-freq)^coi`, the chance that at least one of `coi` independently
// sampled strains carries it, and absent with the complementary
// probability. The original project's MultinomialSourceTransmissionProcess
// leaves this computation as an unimplemented stub (calculateLogLikelihood
// always returns 0); this is the concrete formula spec.md's "source-
// transmission process (exogenous origin)" names, built from the same
// COI-indexed population-sampling idea the stub's name and MAX_COI template
// parameter describe.
func SourceTransmission(genotype Genotype, freqs Simplex, coi float64) float64 {
	total := 0.0
	for i := 0; i < genotype.TotalAlleles(); i++ {
		p := freqs.At(i)
		if genotype.Allele(i) {
			total += math.Log1p(-math.Pow(1-p, coi))
		} else {
			total += coi * math.Log1p(-p)
		}
	}
	return total
}

// NodeTransmission computes, for one infection event's latent genotype at
// one locus, the log-likelihood of that genotype given the event's current
// parent set, marginalized over every permitted parent subset up to
// MaxParentSetSize plus the exogenous-source alternative, combined via
// log-sum-exp. Each subset's weight folds in the p_geom(i) term
// (geometricWeight, the probability of drawing exactly i parents; coi
// enters only the exogenous i=0 term, with no P_coi^i factor) and
// ProbAnyMissing (the probability that an allele absent from the union of
// the chosen parents' genotypes is nonetheless absent from the child,
// i.e. did not arise independently at the child).
type NodeTransmission struct {
	nodeBase[float64]
	child      *InfectionEvent
	locus      string
	parentSet  *ParentSet
	freqs      *Parameter[Simplex]
	coi        *Parameter[float64]
	geomProb   *Parameter[float64]
}

// NewNodeTransmission registers a node-transmission term for child's latent
// genotype at locus.
func NewNodeTransmission(g *Graph, child *InfectionEvent, locus string, parentSet *ParentSet, freqs *Parameter[Simplex], coi, geomProb *Parameter[float64]) *NodeTransmission {
	t := &NodeTransmission{
		child:     child,
		locus:     locus,
		parentSet: parentSet,
		freqs:     freqs,
		coi:       coi,
		geomProb:  geomProb,
	}
	t.init(g, t)
	g.AddDependent(child.LatentGenotype(locus).Handle(), t.handle)
	g.AddDependent(freqs.Handle(), t.handle)
	g.AddDependent(coi.Handle(), t.handle)
	g.AddDependent(geomProb.Handle(), t.handle)
	// Every allowed candidate's genotype can affect this term, not just
	// current members: a candidate not presently in the parent set can
	// still become one later without its genotype parameter changing
	// again, so the dependency must be wired up front rather than only on
	// add.
	for _, p := range parentSet.AllowedParents() {
		if lg := p.LatentGenotype(locus); lg != nil {
			g.AddDependent(lg.Handle(), t.handle)
		}
	}
	parentSet.RegisterAddedObserver(func(*InfectionEvent) { g.MarkDirty(t.handle) })
	parentSet.RegisterRemovedObserver(func(*InfectionEvent) { g.MarkDirty(t.handle) })
	return t
}

// geometricWeight returns p_geom(i), the probability of a parent count of
// exactly i under a geometric distribution with success probability p.
func geometricWeight(p float64, i int) float64 {
	return math.Pow(1-p, float64(i)) * p
}

// Value returns the marginal log-likelihood of the child's latent genotype
// at this locus.
func (t *NodeTransmission) Value() float64 {
	if !t.dirty {
		return t.current
	}

	childGenotype := t.child.LatentGenotype(t.locus).Value()
	parents := t.parentSet.Value()
	candidates := make([]*InfectionEvent, 0, len(parents))
	for _, p := range parents {
		if g := p.LatentGenotype(t.locus); g != nil {
			candidates = append(candidates, p)
		}
	}

	geomP := t.geomProb.Value()
	coi := t.coi.Value()
	freqs := t.freqs.Value()

	logTerms := make([]float64, 0, MaxParentSetSize+2)

	// i=0: no in-cohort parent contributes; the child's genotype arose
	// exogenously.
	logTerms = append(logTerms, math.Log(geometricWeight(geomP, 0))+SourceTransmission(childGenotype, freqs, coi))

	maxSize := minInt(len(candidates), MaxParentSetSize)
	for size := 1; size <= maxSize; size++ {
		c := NewCombinationIndices(len(candidates), size)
		weight := math.Log(geometricWeight(geomP, size))
		for !c.Completed {
			union := NewGenotype(childGenotype.TotalAlleles())
			for _, idx := range c.Curr() {
				union = Any(union, candidates[idx].LatentGenotype(t.locus).Value())
			}

			eventProbs := make([]float64, childGenotype.TotalAlleles())
			for i := range eventProbs {
				eventProbs[i] = freqs.At(i)
			}

			// Alleles present in the child but absent from the parental
			// union must have arisen independently (mutation/exogenous
			// leak); ProbAnyMissing scores how surprising that is given
			// the population frequency of each such allele.
			novel := FalsePositiveCount(union, childGenotype)
			logTerm := weight
			if novel > 0 {
				logTerm += math.Log(ProbAnyMissing(eventProbs, novel))
			}
			logTerms = append(logTerms, logTerm)
			c.Next()
		}
	}

	t.current = LogSumExp(logTerms)
	t.setClean()
	return t.current
}

// Peek returns the last computed value without recomputing.
func (t *NodeTransmission) Peek() float64 { return t.current }
