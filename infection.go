package plasmonet

// InfectionEvent is a dated, observed host-level infection carrying
// multi-locus genotype data. Its infection time (observation time minus
// infection duration) places it within an Ordering; its per-locus latent
// genotype parameters are what MCMC proposals actually mutate.
type InfectionEvent struct {
	handle       Handle
	id           string
	symptomatic  bool
	observedTime float64 // constant: when the infection was sampled
	duration     *Parameter[float64]

	loci     []string
	latent   map[string]*Parameter[Genotype]
	observed map[string]Genotype // absent entries mean missing data at that locus

	disallowedParents []string
}

// NewInfectionEvent creates an infection event and registers its duration
// parameter with g. loci is the full ordered list of locus names this
// event carries a latent genotype for, regardless of whether it has an
// observation at each one.
func NewInfectionEvent(g *Graph, id string, symptomatic bool, observedTime float64, initialDuration float64, loci []string) *InfectionEvent {
	ev := &InfectionEvent{
		id:           id,
		symptomatic:  symptomatic,
		observedTime: observedTime,
		loci:         loci,
		latent:       make(map[string]*Parameter[Genotype]),
		observed:     make(map[string]Genotype),
	}
	ev.duration = NewParameter(g, id+":duration", initialDuration)
	ev.handle = ev.duration.Handle()
	return ev
}

// Handle returns the graph handle used as the event's identity when
// registering Ordering/ParentSet listeners. It is the handle of the
// event's duration parameter, since infection time (and therefore this
// event's position in an Ordering) only ever changes through that
// parameter.
func (e *InfectionEvent) Handle() Handle { return e.handle }

// ID returns the event's identifier, matching the input JSON's "id" field.
func (e *InfectionEvent) ID() string { return e.id }

// Symptomatic reports whether this event was flagged symptomatic at input.
func (e *InfectionEvent) Symptomatic() bool { return e.symptomatic }

// ObservationTime returns the constant time this infection was sampled.
func (e *InfectionEvent) ObservationTime() float64 { return e.observedTime }

// Duration returns the mutable infection-duration parameter.
func (e *InfectionEvent) Duration() *Parameter[float64] { return e.duration }

// InfectionTime returns observation time minus infection duration, the
// quantity Ordering sorts on.
func (e *InfectionEvent) InfectionTime() float64 {
	return e.observedTime - e.duration.Value()
}

// SetLatentGenotype registers or replaces the latent-genotype parameter for
// locus. Called once per locus during input loading.
func (e *InfectionEvent) SetLatentGenotype(locus string, p *Parameter[Genotype]) {
	e.latent[locus] = p
}

// LatentGenotype returns the latent-genotype parameter for locus, or nil
// if this event does not carry one.
func (e *InfectionEvent) LatentGenotype(locus string) *Parameter[Genotype] {
	return e.latent[locus]
}

// SetObservedGenotype records an observed genotype datum for locus. A
// locus with no call to this method (or an all-zero genotype at input) has
// no observation: the likelihood's observation-process term skips it.
func (e *InfectionEvent) SetObservedGenotype(locus string, g Genotype) {
	e.observed[locus] = g
}

// ObservedGenotype returns the observed genotype at locus and whether one
// is present.
func (e *InfectionEvent) ObservedGenotype(locus string) (Genotype, bool) {
	g, ok := e.observed[locus]
	return g, ok
}

// Loci returns every locus this event carries a latent genotype for.
func (e *InfectionEvent) Loci() []string { return e.loci }

// SetDisallowedParents records the ids excluded from this event's allowed
// parent set, resolved against other events by the loader once every
// event has been constructed.
func (e *InfectionEvent) SetDisallowedParents(ids []string) {
	e.disallowedParents = ids
}

// DisallowedParents returns the raw ids recorded by SetDisallowedParents.
func (e *InfectionEvent) DisallowedParents() []string { return e.disallowedParents }
