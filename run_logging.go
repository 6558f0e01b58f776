package plasmonet

// ParentSetPosterior returns a uniform distribution over the event's
// current parent-set candidates plus the exogenous-source alternative, the
// per-iteration snapshot CSVLogger/SQLiteLogger's parent_set trace
// accumulates across the run into an empirical posterior over transmission
// sources. A fully marginal per-iteration posterior would need every
// candidate subset's log-likelihood (kernel_jointgenotypetime.go's
// calculateSamplingProb computes this internally for its own accept ratio,
// but does not expose it outside one proposal step), so this snapshot
// trades that precision for a well-defined trace derived only from what
// the scheduler state already holds between proposals.
func ParentSetPosterior(ps *ParentSet) map[string]float64 {
	members := ps.Value()
	n := len(members) + 1
	posterior := make(map[string]float64, n)
	share := 1.0 / float64(n)
	for _, ev := range members {
		posterior[ev.ID()] = share
	}
	posterior[exogenousSourceToken] = share
	return posterior
}

// LogIteration appends one row to every trace Logger exposes for the given
// chain model's current parameter values.
func LogIteration(logger Logger, m *ChainModel, iter int) error {
	if err := logger.LogLikelihood(iter, m.Likelihood.Value()); err != nil {
		return err
	}
	if err := logger.LogScalar("", "coi", iter, m.Coi.Value()); err != nil {
		return err
	}
	if err := logger.LogScalar("", "geom_prob", iter, m.GeomProb.Value()); err != nil {
		return err
	}
	for _, locus := range m.Domain.Loci {
		if err := logger.LogAlleleFrequencies(locus, iter, m.Domain.AlleleFrequencies[locus].Value()); err != nil {
			return err
		}
	}
	for _, ev := range m.Domain.Events {
		id := ev.ID()
		if err := logger.LogScalar("infection_duration", id, iter, ev.Duration().Value()); err != nil {
			return err
		}
		if err := logger.LogScalar("eps_pos", id, iter, m.EpsPos[id].Value()); err != nil {
			return err
		}
		if err := logger.LogScalar("eps_neg", id, iter, m.EpsNeg[id].Value()); err != nil {
			return err
		}
		if err := logger.LogScalar("coi_count", id, iter, float64(m.CoiCounts[id].Value())); err != nil {
			return err
		}
		for _, locus := range ev.Loci() {
			if err := logger.LogGenotype(id, locus, iter, ev.LatentGenotype(locus).Value()); err != nil {
				return err
			}
		}
		if err := logger.LogParentSetPosterior(ev, iter, ParentSetPosterior(m.ParentSets[id])); err != nil {
			return err
		}
	}
	for _, locus := range m.Domain.Loci {
		if err := logger.LogLatentParentGenotype(exogenousSourceToken, locus, iter, m.Domain.Exogenous.LatentGenotype(locus).Value()); err != nil {
			return err
		}
	}
	return nil
}
