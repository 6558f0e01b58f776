package plasmonet

// meanCoiUpperBound bounds the continuous mean-COI parameter's bounded-walk
// support; a host population sustaining more than this many concurrent
// co-infecting lineages on average is outside any plausible malaria
// transmission scenario this model targets.
const meanCoiUpperBound = 50.0

// RegisterKernels wires one scheduler's full kernel pool from a run
// configuration's [[kernel]] entries, following the teacher's
// ModelNine/SampleScheduler.h registration shape (weight, adaptation
// window) scheduler.go's RegisterKernel already mirrors. Every kernel is
// tested against the chain's full tempered log-posterior: the Likelihood
// node is the only quantity whose before/after values an MH accept ratio
// over any single parameter can correctly compare.
func RegisterKernels(conf *RunConfig, m *ChainModel, scheduler *Scheduler) {
	for _, kp := range conf.Kernels {
		switch kp.Kind {
		case "bounded_walk":
			registerBoundedWalks(conf, m, scheduler, kp)
		case "simplex_salt":
			registerSimplexSALT(m, scheduler, kp)
		case "bit_flip":
			registerBitFlip(m, scheduler, kp)
		case "zanella":
			registerZanella(m, scheduler, kp)
		case "discrete_walk":
			registerDiscreteWalk(m, scheduler, kp)
		case "joint_genotype_time":
			registerJointGenotypeTime(conf, m, scheduler, kp)
		}
	}
}

// newKernelVariance builds a fresh AdaptiveVariance for one concrete kernel
// instance: each instance's step size adapts off its own acceptance history,
// never shared with a sibling instance spawned from the same [[kernel]]
// config entry.
func newKernelVariance(kp *kernelParams) *AdaptiveVariance {
	return NewAdaptiveVariance(0.1, 1e-4, 10, 0.234, kp.AdaptationStart, kp.AdaptationEnd)
}

func registerBoundedWalks(conf *RunConfig, m *ChainModel, scheduler *Scheduler, kp *kernelParams) {
	for _, ev := range m.Domain.Events {
		durVar := newKernelVariance(kp)
		scheduler.RegisterKernel(
			NewBoundedGaussianWalk(ev.ID()+":duration:bw", ev.Duration(), m.Likelihood, conf.Priors.DurationLower, conf.Priors.DurationUpper, durVar),
			kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, durVar)
		posVar := newKernelVariance(kp)
		scheduler.RegisterKernel(
			NewBoundedGaussianWalk(ev.ID()+":eps_pos:bw", m.EpsPos[ev.ID()], m.Likelihood, 0, 1, posVar),
			kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, posVar)
		negVar := newKernelVariance(kp)
		scheduler.RegisterKernel(
			NewBoundedGaussianWalk(ev.ID()+":eps_neg:bw", m.EpsNeg[ev.ID()], m.Likelihood, 0, 1, negVar),
			kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, negVar)
	}
	coiVar := newKernelVariance(kp)
	scheduler.RegisterKernel(
		NewBoundedGaussianWalk("coi:bw", m.Coi, m.Likelihood, 1e-6, meanCoiUpperBound, coiVar),
		kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, coiVar)
	geomVar := newKernelVariance(kp)
	scheduler.RegisterKernel(
		NewBoundedGaussianWalk("geom_prob:bw", m.GeomProb, m.Likelihood, 1e-6, 1-1e-6, geomVar),
		kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, geomVar)
}

func registerSimplexSALT(m *ChainModel, scheduler *Scheduler, kp *kernelParams) {
	for _, locus := range m.Domain.Loci {
		variance := newKernelVariance(kp)
		scheduler.RegisterKernel(
			NewSimplexSALT(locus+":salt", m.Domain.AlleleFrequencies[locus], m.Likelihood, variance),
			kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, variance)
	}
}

func registerBitFlip(m *ChainModel, scheduler *Scheduler, kp *kernelParams) {
	for _, ev := range m.Domain.Events {
		maxCOI := m.CoiCounts[ev.ID()].Value()
		for _, locus := range ev.Loci() {
			scheduler.RegisterKernel(
				NewBitFlip(ev.ID()+":"+locus+":bitflip", ev.LatentGenotype(locus), m.Likelihood, maxCOI),
				kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, nil)
		}
	}
}

func registerZanella(m *ChainModel, scheduler *Scheduler, kp *kernelParams) {
	for _, ev := range m.Domain.Events {
		for _, locus := range ev.Loci() {
			scheduler.RegisterKernel(
				NewZanellaInformed(ev.ID()+":"+locus+":zanella", ev.LatentGenotype(locus), m.Likelihood),
				kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, nil)
		}
	}
}

func registerDiscreteWalk(m *ChainModel, scheduler *Scheduler, kp *kernelParams) {
	for _, ev := range m.Domain.Events {
		scheduler.RegisterKernel(
			NewDiscreteRandomWalk(ev.ID()+":coi_count:dw", m.CoiCounts[ev.ID()], m.Likelihood, 1, MaxParentSetSize, 1),
			kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, nil)
	}
}

func registerJointGenotypeTime(conf *RunConfig, m *ChainModel, scheduler *Scheduler, kp *kernelParams) {
	for _, ev := range m.Domain.Events {
		variance := newKernelVariance(kp)
		scheduler.RegisterKernel(
			NewJointGenotypeTime(ev.ID()+":jgt", ev, m.ParentSets[ev.ID()], m.Domain.Exogenous, m.Likelihood,
				conf.Priors.DurationLower, conf.Priors.DurationUpper, variance,
				conf.ErrorRates.FalseNegativeRate, conf.ErrorRates.FalsePositiveRate),
			kp.Weight, kp.AdaptationStart, kp.AdaptationEnd, variance)
	}
}
