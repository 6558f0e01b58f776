package plasmonet

// Likelihood is the top-level log-posterior: an accumulator over the
// model's log-likelihood terms (observation process, node transmission)
// multiplied by a temperature beta, plus an accumulator over prior terms
// which are temperature-invariant. Temperature lets a replica-exchange
// ladder flatten the likelihood surface for high-temperature chains
// without touching the prior.
type Likelihood struct {
	nodeBase[float64]
	logLik   *Accumulator
	logPrior *Accumulator
	beta     *Parameter[float64]
}

// NewLikelihood registers the top-level log-posterior over the given
// likelihood and prior accumulators, at the given temperature parameter.
func NewLikelihood(g *Graph, logLik, logPrior *Accumulator, beta *Parameter[float64]) *Likelihood {
	l := &Likelihood{logLik: logLik, logPrior: logPrior, beta: beta}
	l.init(g, l)
	g.AddDependent(logLik.Handle(), l.handle)
	g.AddDependent(logPrior.Handle(), l.handle)
	g.AddDependent(beta.Handle(), l.handle)
	return l
}

// Value returns beta*logLik + logPrior, the quantity every proposal kernel
// compares before and after a mutation.
func (l *Likelihood) Value() float64 {
	if !l.dirty {
		return l.current
	}
	l.current = l.beta.Value()*l.logLik.Value() + l.logPrior.Value()
	l.setClean()
	return l.current
}

// Peek returns the last computed value without recomputing.
func (l *Likelihood) Peek() float64 { return l.current }

// RawLikelihood returns logLik.Value() alone, the quantity replica
// exchange compares between chains (the prior is temperature-invariant so
// it cancels out of the swap acceptance ratio; see replica.go).
func (l *Likelihood) RawLikelihood() float64 { return l.logLik.Value() }
