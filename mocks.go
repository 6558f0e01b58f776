package plasmonet

// sampleGenotype builds a genotype of width n with alleles present at the
// given positions, a small fixed-pattern test fixture standing in for the
// teacher's sampleSequence/sampleGenotype helpers.
func sampleGenotype(n int, positions ...int) Genotype {
	g := NewGenotype(n)
	for _, p := range positions {
		g.Set(p, true)
	}
	return g
}

// sampleSimplex builds a uniform allele-frequency simplex over n alleles.
func sampleSimplex(n int) Simplex {
	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = 1.0 / float64(n)
	}
	return NewSimplexFrom(freqs)
}

// sampleDomain builds a small in-memory Domain fixture (three events over
// two loci, one exogenous source) without going through LoadDomain's JSON
// parsing, the way the teacher's sampleEvoEpiSimulation builds a minimal
// simulation directly from constructors for use in tests.
func sampleDomain() *Domain {
	g := NewGraph()
	loci := []string{"msp1", "msp2"}
	numAlleles := map[string]int{"msp1": 4, "msp2": 3}

	freqs := map[string]*Parameter[Simplex]{
		"msp1": NewParameter(g, "allele_freq:msp1", sampleSimplex(4)),
		"msp2": NewParameter(g, "allele_freq:msp2", sampleSimplex(3)),
	}

	mk := func(id string, obsTime, duration float64) *InfectionEvent {
		ev := NewInfectionEvent(g, id, true, obsTime, duration, loci)
		for _, locus := range loci {
			ev.SetLatentGenotype(locus, NewParameter(g, id+":latent:"+locus, canonicalGenotype(numAlleles[locus])))
		}
		return ev
	}

	a := mk("a", 10, 5)
	b := mk("b", 15, 4)
	c := mk("c", 20, 3)

	a.SetObservedGenotype("msp1", sampleGenotype(4, 0))
	b.SetObservedGenotype("msp1", sampleGenotype(4, 0, 1))
	c.SetObservedGenotype("msp1", sampleGenotype(4, 1))

	events := []*InfectionEvent{a, b, c}
	byID := map[string]*InfectionEvent{"a": a, "b": b, "c": c}

	exo := NewInfectionEvent(g, exogenousSourceToken, false, 0, 0, loci)
	for _, locus := range loci {
		exo.LatentGenotype(locus).SetValue(sampleFromFrequencies(freqs[locus].Value(), numAlleles[locus]))
	}

	return &Domain{
		Graph:             g,
		Loci:              loci,
		NumAlleles:        numAlleles,
		Events:            events,
		EventByID:         byID,
		AlleleFrequencies: freqs,
		Exogenous:         exo,
	}
}
