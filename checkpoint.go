package plasmonet

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RunState is the hot-restart snapshot LoadCheckpoint reconstructs from an
// output directory's trace files: the iteration to resume scheduling from,
// plus every parameter value as of the last logged row.
type RunState struct {
	Iteration         int
	Scalars           map[string]float64             // keyed by "<category>/<id>" or "<id>"
	AlleleFrequencies map[string]Simplex              // keyed by locus
	Genotypes         map[string]map[string]Genotype // id -> locus -> genotype
	LatentParents     map[string]map[string]Genotype // id -> locus -> genotype
}

// LoadCheckpoint reconstructs a RunState from an output directory written
// by CSVLogger, reading only the final line of each gzip CSV trace, per
// spec.md section 6 ("Hot-restart reads the final line of each file to
// reconstruct state"). A trace file that does not exist is treated as
// never having been logged, not as an error: a fresh run's output
// directory and a partially-populated one from an interrupted run both
// load cleanly.
func LoadCheckpoint(dir string) (*RunState, error) {
	state := &RunState{
		Scalars:           make(map[string]float64),
		AlleleFrequencies: make(map[string]Simplex),
		Genotypes:         make(map[string]map[string]Genotype),
		LatentParents:     make(map[string]map[string]Genotype),
	}

	if line, ok, err := lastLine(filepath.Join(dir, "stats", "likelihood.csv.gz")); err != nil {
		return nil, err
	} else if ok {
		iter, _, err := splitIterValue(line)
		if err != nil {
			return nil, errors.Wrap(err, "parsing stats/likelihood.csv.gz checkpoint line")
		}
		state.Iteration = iter
	}

	if err := loadScalarDir(filepath.Join(dir, "parameters"), "", state.Scalars); err != nil {
		return nil, err
	}

	freqDir := filepath.Join(dir, "parameters", "allele_frequencies")
	if err := walkCSVFiles(freqDir, func(path, locus string) error {
		line, ok, err := lastLine(path)
		if err != nil || !ok {
			return err
		}
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) < 2 {
			return fmt.Errorf(InvalidStringParameterError, "allele_frequencies row", line, "must have an iteration column plus at least one frequency")
		}
		freqs := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return errors.Wrapf(err, "parsing allele frequency for locus %q", locus)
			}
			freqs[i] = v
		}
		state.AlleleFrequencies[locus] = NewSimplexFrom(freqs)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadGenotypeDir(filepath.Join(dir, "parameters", "genotypes"), state.Genotypes); err != nil {
		return nil, err
	}
	if err := loadGenotypeDir(filepath.Join(dir, "parameters", "latent_parents"), state.LatentParents); err != nil {
		return nil, err
	}

	return state, nil
}

// loadScalarDir walks every *.csv.gz under root and, recursively, under its
// category subdirectories (not descending into
// allele_frequencies/genotypes/latent_parents, which have their own
// structured loaders) and records each file's last value keyed by its
// category-qualified id, a subdirectory's name serving as the category.
func loadScalarDir(root, category string, out map[string]float64) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading checkpoint directory %s", root)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			switch name {
			case "allele_frequencies", "genotypes", "latent_parents":
				continue
			}
			if err := loadScalarDir(filepath.Join(root, name), name, out); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(name, ".csv.gz") {
			continue
		}
		id := strings.TrimSuffix(name, ".csv.gz")
		line, ok, err := lastLine(filepath.Join(root, name))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		_, value, err := splitIterValue(line)
		if err != nil {
			return errors.Wrapf(err, "parsing checkpoint value for %s/%s", category, id)
		}
		key := id
		if category != "" {
			key = category + "/" + id
		}
		out[key] = value
	}
	return nil
}

// loadGenotypeDir walks root/<id>/<locus>.csv.gz, recording the last
// genotype bitstring logged for each id/locus pair.
func loadGenotypeDir(root string, out map[string]map[string]Genotype) error {
	idDirs, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading checkpoint directory %s", root)
	}
	for _, idDir := range idDirs {
		if !idDir.IsDir() {
			continue
		}
		id := idDir.Name()
		if err := walkCSVFiles(filepath.Join(root, id), func(path, locus string) error {
			line, ok, err := lastLine(path)
			if err != nil || !ok {
				return err
			}
			fields := strings.SplitN(strings.TrimSpace(line), ",", 2)
			if len(fields) != 2 {
				return fmt.Errorf(InvalidStringParameterError, "genotype row", line, "must have iteration and bitstring columns")
			}
			g, err := ParseGenotype(fields[1])
			if err != nil {
				return errors.Wrapf(err, "parsing genotype checkpoint for %s locus %q", id, locus)
			}
			if out[id] == nil {
				out[id] = make(map[string]Genotype)
			}
			out[id][locus] = g
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// walkCSVFiles calls fn(path, locus) for every "<locus>.csv.gz" file
// directly under dir.
func walkCSVFiles(dir string, fn func(path, locus string) error) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading checkpoint directory %s", dir)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv.gz") {
			continue
		}
		locus := strings.TrimSuffix(entry.Name(), ".csv.gz")
		if err := fn(filepath.Join(dir, entry.Name()), locus); err != nil {
			return err
		}
	}
	return nil
}

// splitIterValue parses a "<iter>,<value>" checkpoint line.
func splitIterValue(line string) (int, float64, error) {
	fields := strings.SplitN(strings.TrimSpace(line), ",", 2)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf(InvalidStringParameterError, "checkpoint row", line, "must have exactly an iteration and a value column")
	}
	iter, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, errors.Wrap(err, "parsing checkpoint iteration")
	}
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "parsing checkpoint value")
	}
	return iter, value, nil
}

// lastLine returns the final non-empty line of a gzip-compressed text
// file at path, and false if the file does not exist.
func lastLine(path string) (string, bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "opening checkpoint file %s", path)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", false, errors.Wrapf(err, "decompressing checkpoint file %s", path)
	}
	defer gz.Close()

	var last string
	scanner := bufio.NewScanner(gz)
	const maxLineBytes = 1 << 20
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, errors.Wrapf(err, "scanning checkpoint file %s", path)
	}
	if last == "" {
		return "", false, nil
	}
	return last, true, nil
}
