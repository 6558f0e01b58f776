package plasmonet

import (
	"fmt"
	"path/filepath"
)

// exogenousSourceToken is the literal parent-set-posterior key denoting
// the exogenous-source alternative, spelled exactly as spec.md's output
// layout names it.
const exogenousSourceToken = "{S}"

// CSVLogger is the default Logger backend: every trace is a gzip-
// compressed CSV file under an OutputContext-managed output directory.
type CSVLogger struct {
	ctx *OutputContext
}

// NewCSVLogger creates a CSVLogger writing through ctx.
func NewCSVLogger(ctx *OutputContext) *CSVLogger {
	return &CSVLogger{ctx: ctx}
}

// LogLikelihood appends to stats/likelihood.csv.gz.
func (l *CSVLogger) LogLikelihood(iter int, value float64) error {
	return l.ctx.WriteLine(filepath.Join("stats", "likelihood.csv.gz"), fmt.Sprintf("%d,%g\n", iter, value))
}

// LogParentSetPosterior appends rows parent_set,prob,iter to
// parent_sets/<id>_ps.csv.gz, one row per candidate in posterior.
func (l *CSVLogger) LogParentSetPosterior(child *InfectionEvent, iter int, posterior map[string]float64) error {
	path := filepath.Join("parent_sets", child.ID()+"_ps.csv.gz")
	for parentID, prob := range posterior {
		line := fmt.Sprintf("%s,%g,%d\n", parentID, prob, iter)
		if err := l.ctx.WriteLine(path, line); err != nil {
			return err
		}
	}
	return nil
}

// LogScalar appends to parameters/<category>/<id>.csv.gz, or
// parameters/<id>.csv.gz when category is empty.
func (l *CSVLogger) LogScalar(category, id string, iter int, value float64) error {
	var path string
	if category == "" {
		path = filepath.Join("parameters", id+".csv.gz")
	} else {
		path = filepath.Join("parameters", category, id+".csv.gz")
	}
	return l.ctx.WriteLine(path, fmt.Sprintf("%d,%g\n", iter, value))
}

// LogAlleleFrequencies appends comma-separated simplex coordinates to
// parameters/allele_frequencies/<locus>.csv.gz.
func (l *CSVLogger) LogAlleleFrequencies(locus string, iter int, freqs Simplex) error {
	path := filepath.Join("parameters", "allele_frequencies", locus+".csv.gz")
	line := fmt.Sprintf("%d", iter)
	for i := 0; i < freqs.Len(); i++ {
		line += fmt.Sprintf(",%g", freqs.At(i))
	}
	return l.ctx.WriteLine(path, line+"\n")
}

// LogGenotype appends to parameters/genotypes/<id>/<locus>.csv.gz.
func (l *CSVLogger) LogGenotype(id, locus string, iter int, g Genotype) error {
	path := filepath.Join("parameters", "genotypes", id, locus+".csv.gz")
	return l.ctx.WriteLine(path, fmt.Sprintf("%d,%s\n", iter, g.String()))
}

// LogLatentParentGenotype appends to
// parameters/latent_parents/<id>/<locus>.csv.gz.
func (l *CSVLogger) LogLatentParentGenotype(id, locus string, iter int, g Genotype) error {
	path := filepath.Join("parameters", "latent_parents", id, locus+".csv.gz")
	return l.ctx.WriteLine(path, fmt.Sprintf("%d,%s\n", iter, g.String()))
}

// Close flushes and closes every output handle the logger's context
// opened.
func (l *CSVLogger) Close() error {
	return l.ctx.Close()
}
