package plasmonet

import (
	"math"
	"math/rand"
)

// JointGenotypeTime jointly proposes a new infection duration and a new set
// of per-locus latent genotypes for one infection event, conditioned on a
// posited transmission source: a uniformly chosen subset of the event's
// current parent set (of size 1..MaxParentSetSize), independently combined
// with or without the exogenous source-transmission reservoir. Resampled
// alleles are drawn only from the union of the posited sources' alleles,
// with every posited source guaranteed to contribute at least one allele
// somewhere, and nudged toward the observed call where one exists. Because
// changing the duration also changes the event's position in its Ordering
// and therefore which events are even eligible as parents, the reverse
// move's sampling probability is recomputed from scratch after the genotype
// is set rather than assumed symmetric.
type JointGenotypeTime struct {
	counters
	id           string
	infection    *InfectionEvent
	parentSet    *ParentSet
	exogenous    *InfectionEvent
	target       FloatNode
	lower, upper float64
	variance     *AdaptiveVariance
	fnRate       float64
	fpRate       float64
	iter         int
}

// NewJointGenotypeTime registers a joint genotype/time kernel for one
// infection event. exogenous stands in for the source-transmission
// reservoir: an InfectionEvent whose latent genotypes are drawn from the
// population allele frequencies rather than from any other observed event,
// always available as a transmission source candidate alongside parentSet's
// members.
func NewJointGenotypeTime(id string, infection *InfectionEvent, parentSet *ParentSet, exogenous *InfectionEvent, target FloatNode, lower, upper float64, variance *AdaptiveVariance, fnRate, fpRate float64) *JointGenotypeTime {
	return &JointGenotypeTime{
		id:        id,
		infection: infection,
		parentSet: parentSet,
		exogenous: exogenous,
		target:    target,
		lower:     lower,
		upper:     upper,
		variance:  variance,
		fnRate:    fnRate,
		fpRate:    fpRate,
	}
}

// ID returns the kernel's logging identifier.
func (k *JointGenotypeTime) ID() string { return k.id }

const jointGenotypeSourceIdx = -1

// calculateSamplingProb returns the log-probability of the infection
// event's currently set latent genotypes, marginalized uniformly over
// every (parent subset, include-exogenous) combination that could have
// produced them. A candidate combination is incompatible (probability
// zero) wherever the child's latent genotype carries an allele absent
// from every source in that combination.
func (k *JointGenotypeTime) calculateSamplingProb(parents []*InfectionEvent) float64 {
	var probs []float64
	maxLL := math.Inf(-1)

	evalCombo := func(selected []int, includeExo bool) {
		totalTP, totalTN, totalFP, totalFN := 0, 0, 0, 0
		for _, locus := range k.infection.Loci() {
			obs, ok := k.infection.ObservedGenotype(locus)
			if !ok {
				continue
			}
			childLatent := k.infection.LatentGenotype(locus).Value()
			allShared := k.sharedAlleles(locus, parents, selected, includeExo)

			if FalsePositiveCount(allShared, childLatent) > 0 {
				probs = append(probs, math.Inf(-1))
				return
			}

			illegalFP := FalsePositiveCount(allShared, obs)
			illegalTN := TrueNegativeCount(allShared, obs)
			totalFN += FalseNegativeCount(childLatent, obs)
			totalTP += TruePositiveCount(childLatent, obs)
			totalTN += TrueNegativeCount(childLatent, obs) - illegalTN
			totalFP += FalsePositiveCount(childLatent, obs) - illegalFP
		}
		ll := float64(totalTN)*math.Log1p(-k.fnRate) + float64(totalFN)*math.Log(k.fnRate) +
			float64(totalFP)*math.Log(k.fpRate) + float64(totalTP)*math.Log1p(-k.fpRate)
		probs = append(probs, ll)
		if ll > maxLL {
			maxLL = ll
		}
	}

	maxSize := minInt(MaxParentSetSize, len(parents))
	for size := 1; size <= maxSize; size++ {
		c := NewCombinationIndices(len(parents), size)
		for !c.Completed {
			evalCombo(c.Curr(), false)
			evalCombo(c.Curr(), true)
			c.Next()
		}
	}
	evalCombo(nil, true)

	if len(probs) == 0 {
		return 0
	}
	return LogSumExp(probs) - math.Log(float64(len(probs)))
}

// sharedAlleles returns the union of alleles carried by the posited source
// set at locus: the selected parents, and the exogenous reservoir if
// includeExo is set.
func (k *JointGenotypeTime) sharedAlleles(locus string, parents []*InfectionEvent, selected []int, includeExo bool) Genotype {
	var union Genotype
	started := false
	if includeExo {
		union = k.exogenous.LatentGenotype(locus).Value()
		started = true
	}
	for _, idx := range selected {
		g := parents[idx].LatentGenotype(locus).Value()
		if !started {
			union = g
			started = true
		} else {
			union = Any(union, g)
		}
	}
	return union
}

// Step runs one joint proposal: a bounded-walk move on infection duration
// plus a resample of every locus's latent genotype conditioned on a freshly
// posited parent subset, accepted or rejected as a single unit.
func (k *JointGenotypeTime) Step(rng *rand.Rand) bool {
	g := k.infection.Duration().graph
	id := newStateID()

	parents := make([]*InfectionEvent, 0, k.parentSet.Len())
	for _, p := range k.parentSet.Value() {
		parents = append(parents, p)
	}

	l0 := k.target.Value()
	currentStateProb := k.calculateSamplingProb(parents)

	curDur := k.infection.Duration().Value()
	g.SaveState(k.infection.Duration().Handle(), id)
	propDur := sampleBoundedWalk(rng, curDur, k.variance.Sigma, k.lower, k.upper)
	adj := logitAdjustment(curDur, propDur, k.lower, k.upper)
	k.infection.Duration().SetValue(propDur)

	maxSize := minInt(MaxParentSetSize, len(parents))
	totalPossible := 0
	cumulative := make([]int, 0, maxSize)
	for size := 1; size <= maxSize; size++ {
		totalPossible += numCombinations(len(parents), size)
		cumulative = append(cumulative, totalPossible)
	}

	var selected []int
	includeExo := false
	if totalPossible > 0 {
		pick := rng.Intn(totalPossible)
		includeExo = rng.Float64() < 0.5
		size, offset := 1, pick
		for i, c := range cumulative {
			if pick < c {
				size = i + 1
				if i > 0 {
					offset = pick - cumulative[i-1]
				} else {
					offset = pick
				}
				break
			}
		}
		c := NewCombinationIndices(len(parents), size)
		for i := 0; i < offset; i++ {
			c.Next()
		}
		selected = append(selected, c.Curr()...)
	} else {
		includeExo = true
	}

	for _, locus := range k.infection.Loci() {
		g.SaveState(k.infection.LatentGenotype(locus).Handle(), id)
	}

	for _, locus := range k.infection.Loci() {
		k.resampleLocus(rng, locus, parents, selected, includeExo)
	}

	proposedStateProb := k.calculateSamplingProb(parents)
	l1 := k.target.Value()

	acceptanceRatio := l1 - l0 + currentStateProb - proposedStateProb + adj
	u := rng.Float64()
	accept := !math.IsInf(acceptanceRatio, 1) && math.Log(u) <= acceptanceRatio

	if accept {
		g.AcceptState(k.infection.Duration().Handle(), id)
		for _, locus := range k.infection.Loci() {
			g.AcceptState(k.infection.LatentGenotype(locus).Handle(), id)
		}
	} else {
		g.RestoreState(k.infection.Duration().Handle(), id)
		for _, locus := range k.infection.Loci() {
			g.RestoreState(k.infection.LatentGenotype(locus).Handle(), id)
		}
	}

	k.iter++
	k.record(accept)
	k.variance.Update(k.iter, accept, AcceptanceRate(k))
	return accept
}

// resampleLocus draws a fresh latent genotype at locus from the alleles
// shared by the posited source set, setting each allele present in the
// union with probability informed by the observed call (when one exists)
// and forcing it present whenever needed so every posited source ends up
// contributing at least one allele.
func (k *JointGenotypeTime) resampleLocus(rng *rand.Rand, locus string, parents []*InfectionEvent, selected []int, includeExo bool) {
	current := k.infection.LatentGenotype(locus).Value()
	n := current.TotalAlleles()
	allShared := k.sharedAlleles(locus, parents, selected, includeExo)
	proposal := NewGenotype(n)

	oneSet := make(map[int]bool, len(selected)+1)
	for _, idx := range selected {
		oneSet[idx] = false
	}
	if includeExo {
		oneSet[jointGenotypeSourceIdx] = false
	}

	obs, hasObs := k.infection.ObservedGenotype(locus)

	for _, i := range rng.Perm(n) {
		if !allShared.Allele(i) {
			continue
		}

		var candidates []int
		for _, idx := range selected {
			if !oneSet[idx] && parents[idx].LatentGenotype(locus).Value().Allele(i) {
				candidates = append(candidates, idx)
			}
		}
		if includeExo && !oneSet[jointGenotypeSourceIdx] && k.exogenous.LatentGenotype(locus).Value().Allele(i) {
			candidates = append(candidates, jointGenotypeSourceIdx)
		}

		p := rng.Float64()
		setPresent := false
		switch {
		case hasObs && obs.Allele(i):
			setPresent = p < 1-k.fpRate || len(candidates) > 0
		case hasObs && !obs.Allele(i):
			setPresent = !(p < 1-k.fnRate && len(candidates) == 0)
		default:
			setPresent = p < 0.5 || len(candidates) > 0
		}

		proposal.Set(i, setPresent)
		if setPresent {
			for _, idx := range candidates {
				oneSet[idx] = true
			}
		}
	}

	k.infection.LatentGenotype(locus).SetValue(proposal)
}
