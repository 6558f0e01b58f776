package plasmonet

import "math"

// CoiCountPrior computes log(probabilities[target]), or -Inf outside the
// table, over an integer-valued complexity-of-infection count parameter.
// It is the integer counterpart of DiscretePrior (priors.go), which is
// built over a *Parameter[float64] target instead.
type CoiCountPrior struct {
	nodeBase[float64]
	target        *Parameter[int]
	probabilities []float64
}

// NewCoiCountPrior registers a discrete log-density prior over target
// against a fixed probability table indexed by coi_count.
func NewCoiCountPrior(g *Graph, target *Parameter[int], probabilities []float64) *CoiCountPrior {
	p := &CoiCountPrior{target: target, probabilities: probabilities}
	p.init(g, p)
	g.AddDependent(target.Handle(), p.handle)
	return p
}

// Value returns the current discrete log-density.
func (p *CoiCountPrior) Value() float64 {
	if !p.dirty {
		return p.current
	}
	idx := p.target.Value()
	if idx < 0 || idx >= len(p.probabilities) {
		p.current = math.Inf(-1)
	} else {
		p.current = math.Log(p.probabilities[idx])
	}
	p.setClean()
	return p.current
}

// Peek returns the last computed value without recomputing.
func (p *CoiCountPrior) Peek() float64 { return p.current }

// coiCountTable builds the probability table CoiCountPrior enforces over an
// event's coi_count parameter: a geometric distribution over parent counts
// 1..MaxParentSetSize with success probability p, normalized to sum to 1
// over that truncated support (the same p_geom weighting transmission.go's
// geometricWeight uses for the continuous marginalization, reused here as
// the discrete prior a sampled coi_count is checked against).
func coiCountTable(p float64) []float64 {
	probs := make([]float64, MaxParentSetSize+1)
	total := 0.0
	for i := 1; i <= MaxParentSetSize; i++ {
		w := geometricWeight(p, i)
		probs[i] = w
		total += w
	}
	if total > 0 {
		for i := range probs {
			probs[i] /= total
		}
	}
	return probs
}

// initialCoiCount picks the mode of a coi-count probability table as the
// parameter's starting value.
func initialCoiCount(table []float64) int {
	best, bestP := 1, -1.0
	for i, p := range table {
		if i == 0 {
			continue
		}
		if p > bestP {
			bestP = p
			best = i
		}
	}
	return best
}

// ChainModel is one chain's fully wired graph: every parameter and
// computation NodeTransmission, ObservationProcess, and the priors need,
// plus the lookups RegisterKernels (kernels.go), called from
// bin/plasmonet/main.go, iterates over.
type ChainModel struct {
	Graph      *Graph
	Domain     *Domain
	Ordering   *Ordering
	ParentSets map[string]*ParentSet
	CoiCounts  map[string]*Parameter[int]
	EpsPos     map[string]*Parameter[float64]
	EpsNeg     map[string]*Parameter[float64]
	Coi        *Parameter[float64]
	GeomProb   *Parameter[float64]
	Beta       *Parameter[float64]
	Likelihood *Likelihood
}

// BuildChainModel constructs one chain's graph from a freshly loaded Domain
// at the given temperature, wiring every NodeTransmission and
// ObservationProcess term into a logLik accumulator and every Beta/Gamma/
// Discrete prior into a logPrior accumulator, per SPEC_FULL.md's model
// description. Each infection event additionally carries an integer
// coi_count parameter (the realized number of distinct co-infecting
// strains for that host), the target DiscreteRandomWalk is registered
// against in kernels.go's registerDiscreteWalk, kept plausible by a geometric CoiCountPrior derived
// from the same p_geom weighting transmission.go's marginalization uses.
func BuildChainModel(conf *RunConfig, beta float64) (*ChainModel, error) {
	domain, err := LoadDomain(conf.Run.InputPath)
	if err != nil {
		return nil, err
	}
	g := domain.Graph

	m := &ChainModel{
		Graph:      g,
		Domain:     domain,
		Ordering:   NewOrdering(),
		ParentSets: make(map[string]*ParentSet, len(domain.Events)),
		CoiCounts:  make(map[string]*Parameter[int], len(domain.Events)),
		EpsPos:     make(map[string]*Parameter[float64], len(domain.Events)),
		EpsNeg:     make(map[string]*Parameter[float64], len(domain.Events)),
	}

	m.Ordering.AddElements(domain.Events)

	for _, ev := range domain.Events {
		disallowed := make(map[string]bool, len(ev.DisallowedParents()))
		for _, id := range ev.DisallowedParents() {
			disallowed[id] = true
		}
		allowed := make([]*InfectionEvent, 0, len(domain.Events))
		for _, other := range domain.Events {
			if other == ev || disallowed[other.ID()] {
				continue
			}
			allowed = append(allowed, other)
		}
		m.ParentSets[ev.ID()] = NewParentSet(m.Ordering, ev, allowed)
	}

	m.Coi = NewParameter(g, "coi", conf.Priors.CoiShape/conf.Priors.CoiRate)
	geomProbInit := conf.Priors.GeomProbAlpha / (conf.Priors.GeomProbAlpha + conf.Priors.GeomProbBeta)
	m.GeomProb = NewParameter(g, "geom_prob", geomProbInit)
	m.Beta = NewParameter(g, "beta", beta)

	logLik := NewAccumulator(g)
	logPrior := NewAccumulator(g)

	table := coiCountTable(geomProbInit)
	for _, ev := range domain.Events {
		epsPos := NewParameter(g, ev.ID()+":eps_pos", conf.ErrorRates.FalsePositiveRate)
		epsNeg := NewParameter(g, ev.ID()+":eps_neg", conf.ErrorRates.FalseNegativeRate)
		m.EpsPos[ev.ID()] = epsPos
		m.EpsNeg[ev.ID()] = epsNeg
		logPrior.AddChild(NewBetaPrior(g, epsPos, 1, 1))
		logPrior.AddChild(NewBetaPrior(g, epsNeg, 1, 1))

		coiCount := NewParameter(g, ev.ID()+":coi_count", initialCoiCount(table))
		m.CoiCounts[ev.ID()] = coiCount
		logPrior.AddChild(NewCoiCountPrior(g, coiCount, table))

		parentSet := m.ParentSets[ev.ID()]
		for _, locus := range domain.Loci {
			freq := domain.AlleleFrequencies[locus]
			logLik.AddChild(NewNodeTransmission(g, ev, locus, parentSet, freq, m.Coi, m.GeomProb))
			if obs, ok := ev.ObservedGenotype(locus); ok {
				logLik.AddChild(NewObservationProcess(g, ev.LatentGenotype(locus), obs, epsPos, epsNeg))
			}
		}
	}

	logPrior.AddChild(NewGammaPrior(g, m.Coi, conf.Priors.CoiShape, 1/conf.Priors.CoiRate))
	logPrior.AddChild(NewBetaPrior(g, m.GeomProb, conf.Priors.GeomProbAlpha, conf.Priors.GeomProbBeta))

	m.Likelihood = NewLikelihood(g, logLik, logPrior, m.Beta)
	return m, nil
}

// ApplyCheckpoint overwrites m's parameters with values recovered from a
// prior run's trace files, for every parameter the checkpoint actually
// recorded. LatentParents is read back by LoadCheckpoint for diagnostic
// completeness but is not replayed here: spec.md ties the genotype trace,
// not the latent-parent trace, to the parameter a fresh chain reconstructs.
func ApplyCheckpoint(m *ChainModel, state *RunState) {
	if state == nil {
		return
	}
	for id, ev := range m.Domain.EventByID {
		if v, ok := state.Scalars["infection_duration/"+id]; ok {
			ev.Duration().SetValue(v)
		}
		if v, ok := state.Scalars["eps_pos/"+id]; ok {
			m.EpsPos[id].SetValue(v)
		}
		if v, ok := state.Scalars["eps_neg/"+id]; ok {
			m.EpsNeg[id].SetValue(v)
		}
		for locus, g := range state.Genotypes[id] {
			if p := ev.LatentGenotype(locus); p != nil {
				p.SetValue(g)
			}
		}
		if v, ok := state.Scalars["coi_count/"+id]; ok {
			m.CoiCounts[id].SetValue(int(v))
		}
	}
	for locus, freq := range state.AlleleFrequencies {
		if p, ok := m.Domain.AlleleFrequencies[locus]; ok {
			p.SetValue(freq)
		}
	}
	if v, ok := state.Scalars["coi"]; ok {
		m.Coi.SetValue(v)
	}
	if v, ok := state.Scalars["geom_prob"]; ok {
		m.GeomProb.SetValue(v)
	}
}
