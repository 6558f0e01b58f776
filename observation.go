package plasmonet

import "math"

// AlleleCounts tallies true/false positive/negative allele calls between a
// latent genotype and its corresponding observation, the sufficient
// statistic the observation-process likelihood needs per infection event
// per locus.
type AlleleCounts struct {
	TruePositive, TrueNegative, FalsePositive, FalseNegative int
}

// CountAlleles compares a latent genotype against its observed genotype.
func CountAlleles(latent, observed Genotype) AlleleCounts {
	return AlleleCounts{
		TruePositive:  TruePositiveCount(latent, observed),
		TrueNegative:  TrueNegativeCount(latent, observed),
		FalsePositive: FalsePositiveCount(latent, observed),
		FalseNegative: FalseNegativeCount(latent, observed),
	}
}

// ObservationProcess is the per-infection, per-locus likelihood term
//
//	tp*log(1-e+/N) + tn*log(1-e-/N) + fp*log(e+/N) + fn*log(e-/N)
//
// where e+/e- are expected false positive/negative allele counts and N is
// the locus's total allele count. It recomputes only when its latent
// genotype or either rate parameter changes.
type ObservationProcess struct {
	nodeBase[float64]
	latent   *Parameter[Genotype]
	observed Genotype
	n        int
	epsPos   *Parameter[float64]
	epsNeg   *Parameter[float64]
}

// NewObservationProcess registers an observation-process term for a single
// infection event / locus pair that actually has an observation.
func NewObservationProcess(g *Graph, latent *Parameter[Genotype], observed Genotype, epsPos, epsNeg *Parameter[float64]) *ObservationProcess {
	o := &ObservationProcess{
		latent:   latent,
		observed: observed,
		n:        observed.TotalAlleles(),
		epsPos:   epsPos,
		epsNeg:   epsNeg,
	}
	o.init(g, o)
	g.AddDependent(latent.Handle(), o.handle)
	g.AddDependent(epsPos.Handle(), o.handle)
	g.AddDependent(epsNeg.Handle(), o.handle)
	return o
}

// Value returns the current observation-process log-likelihood term.
func (o *ObservationProcess) Value() float64 {
	if !o.dirty {
		return o.current
	}
	counts := CountAlleles(o.latent.Value(), o.observed)
	n := float64(o.n)
	posRate := o.epsPos.Value() / n
	negRate := o.epsNeg.Value() / n

	o.current = float64(counts.TruePositive)*math.Log1p(-posRate) +
		float64(counts.TrueNegative)*math.Log1p(-negRate) +
		float64(counts.FalsePositive)*math.Log(posRate) +
		float64(counts.FalseNegative)*math.Log(negRate)
	o.setClean()
	return o.current
}

// Peek returns the last computed value without recomputing.
func (o *ObservationProcess) Peek() float64 { return o.current }
