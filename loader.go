package plasmonet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// locusSpec is one entry of the input JSON's "loci" array.
type locusSpec struct {
	Locus      string `json:"locus"`
	NumAlleles int    `json:"num_alleles"`
}

// observedGenotypeSpec is one entry of a node's "observed_genotype" array.
type observedGenotypeSpec struct {
	Locus    string `json:"locus"`
	Genotype string `json:"genotype"`
}

// nodeSpec is one entry of the input JSON's "nodes" array.
type nodeSpec struct {
	ID                string                 `json:"id"`
	ObservationTime   float64                `json:"observation_time"`
	Symptomatic       bool                   `json:"symptomatic"`
	ObservedGenotype  []observedGenotypeSpec `json:"observed_genotype"`
	DisallowedParents []string               `json:"disallowed_parents"`
}

// alleleFrequencySpec is one entry of the input JSON's
// "allele_frequencies" array.
type alleleFrequencySpec struct {
	Locus       string    `json:"locus"`
	Frequencies []float64 `json:"frequencies"`
}

// inputDocument is the full shape of the input JSON described in spec.md
// section 6.
type inputDocument struct {
	Loci              []locusSpec           `json:"loci"`
	Nodes             []nodeSpec            `json:"nodes"`
	AlleleFrequencies []alleleFrequencySpec `json:"allele_frequencies"`
}

// Domain is everything LoadDomain builds from one input JSON document: the
// dependency graph backing every parameter and computation, the events and
// their per-locus allele-frequency parameters, and the exogenous source
// event every infection's node-transmission term can draw from.
type Domain struct {
	Graph             *Graph
	Loci              []string
	NumAlleles        map[string]int
	Events            []*InfectionEvent
	EventByID         map[string]*InfectionEvent
	AlleleFrequencies map[string]*Parameter[Simplex]
	Exogenous         *InfectionEvent
}

// LoadDomain parses the input JSON document at path and builds a Domain:
// the loci table, every infection event with its observed and (canonically
// initialized) latent genotype parameters, the exogenous source event, and
// one allele-frequency parameter per locus. It returns a configuration
// error (never a panic) for malformed JSON, an unknown locus reference, a
// genotype string of the wrong length, or a disallowed-parent id that
// names no known event.
func LoadDomain(path string) (*Domain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading input document %s", path)
	}

	var doc inputDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing input document as JSON")
	}

	numAlleles := make(map[string]int, len(doc.Loci))
	loci := make([]string, 0, len(doc.Loci))
	for _, l := range doc.Loci {
		if l.NumAlleles > MaxAlleles {
			return nil, fmt.Errorf(InvalidIntParameterError, "num_alleles", l.NumAlleles, fmt.Sprintf("exceeds MaxAlleles=%d", MaxAlleles))
		}
		numAlleles[l.Locus] = l.NumAlleles
		loci = append(loci, l.Locus)
	}

	g := NewGraph()
	d := &Domain{
		Graph:             g,
		Loci:              loci,
		NumAlleles:        numAlleles,
		EventByID:         make(map[string]*InfectionEvent, len(doc.Nodes)),
		AlleleFrequencies: make(map[string]*Parameter[Simplex], len(doc.Loci)),
	}

	for _, freq := range doc.AlleleFrequencies {
		n, ok := numAlleles[freq.Locus]
		if !ok {
			return nil, fmt.Errorf(UnknownLocusError, freq.Locus, "allele_frequencies")
		}
		if len(freq.Frequencies) != n {
			return nil, fmt.Errorf(GenotypeLengthMismatchError, freq.Locus, len(freq.Frequencies), n)
		}
		simplex := NewSimplexFrom(freq.Frequencies)
		d.AlleleFrequencies[freq.Locus] = NewParameter(g, "allele_freq:"+freq.Locus, simplex)
	}

	for _, node := range doc.Nodes {
		ev := NewInfectionEvent(g, node.ID, node.Symptomatic, node.ObservationTime, 1.0, loci)
		for _, locus := range loci {
			n := numAlleles[locus]
			ev.SetLatentGenotype(locus, NewParameter(g, node.ID+":latent:"+locus, canonicalGenotype(n)))
		}
		for _, obs := range node.ObservedGenotype {
			n, ok := numAlleles[obs.Locus]
			if !ok {
				return nil, fmt.Errorf(UnknownLocusError, obs.Locus, node.ID)
			}
			if len(obs.Genotype) != 0 && len(obs.Genotype) != n {
				return nil, fmt.Errorf(GenotypeLengthMismatchError, obs.Locus, len(obs.Genotype), n)
			}
			parsed, err := parseObservedGenotype(obs.Genotype, n)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing observed genotype at locus %q for node %q", obs.Locus, node.ID)
			}
			if parsed.TotalPositiveCount() == 0 {
				continue // all-zero means missing data at this locus
			}
			ev.SetObservedGenotype(obs.Locus, parsed)
			ev.LatentGenotype(obs.Locus).SetValue(parsed)
		}
		ev.SetDisallowedParents(node.DisallowedParents)
		d.Events = append(d.Events, ev)
		d.EventByID[node.ID] = ev
	}

	for _, ev := range d.Events {
		for _, disallowed := range ev.DisallowedParents() {
			if _, ok := d.EventByID[disallowed]; !ok {
				return nil, fmt.Errorf(DisallowedParentError, disallowed, ev.ID())
			}
		}
	}

	d.Exogenous = NewInfectionEvent(g, exogenousSourceToken, false, 0, 0, loci)
	for _, locus := range loci {
		freqParam, ok := d.AlleleFrequencies[locus]
		if !ok {
			continue
		}
		n := numAlleles[locus]
		source := sampleFromFrequencies(freqParam.Value(), n)
		d.Exogenous.LatentGenotype(locus).SetValue(source)
	}

	return d, nil
}

// canonicalGenotype returns the canonical latent-genotype initializer
// "10...0" for a locus with n alleles, the value spec.md assigns a latent
// genotype when its observation is missing.
func canonicalGenotype(n int) Genotype {
	g := NewGenotype(n)
	if n > 0 {
		g.Set(0, true)
	}
	return g
}

// parseObservedGenotype parses an observed-genotype bit string, treating
// an empty string as the all-zero (missing data) pattern of width n.
func parseObservedGenotype(bitstr string, n int) (Genotype, error) {
	if bitstr == "" {
		return NewGenotype(n), nil
	}
	return ParseGenotype(bitstr)
}

// sampleFromFrequencies builds a one-allele-present genotype by placing
// the single present allele at the simplex's highest-frequency coordinate,
// a deterministic stand-in for the exogenous reservoir's initial latent
// state before any proposal has touched it.
func sampleFromFrequencies(freqs Simplex, n int) Genotype {
	best := 0
	bestP := -1.0
	for i := 0; i < n; i++ {
		if p := freqs.At(i); p > bestP {
			bestP = p
			best = i
		}
	}
	g := NewGenotype(n)
	if n > 0 {
		g.Set(best, true)
	}
	return g
}
