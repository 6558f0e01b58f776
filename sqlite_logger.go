package plasmonet

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLogger is the alternative Logger backend: every trace becomes a
// row in one of a handful of tables in a single SQLite database, rather
// than one gzip CSV file per trace. Useful when a run's output is queried
// directly instead of parsed as CSV.
type SQLiteLogger struct {
	db *sql.DB

	insertLikelihood   *sql.Stmt
	insertParentSet    *sql.Stmt
	insertScalar       *sql.Stmt
	insertFrequencies  *sql.Stmt
	insertGenotype     *sql.Stmt
	insertLatentParent *sql.Stmt
}

// NewSQLiteLogger opens (creating if absent) a SQLite database at path and
// prepares its run-trace schema.
func NewSQLiteLogger(path string) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal=WAL&_locking=EXCLUSIVE&_sync=NORMAL", path))
	if err != nil {
		return nil, err
	}

	schema := []string{
		`create table if not exists likelihood (iter integer not null, value real not null)`,
		`create table if not exists parent_set_posterior (child text not null, parent text not null, prob real not null, iter integer not null)`,
		`create table if not exists scalar_parameter (category text not null, id text not null, iter integer not null, value real not null)`,
		`create table if not exists allele_frequencies (locus text not null, iter integer not null, frequencies text not null)`,
		`create table if not exists genotype (id text not null, locus text not null, iter integer not null, bits text not null)`,
		`create table if not exists latent_parent_genotype (id text not null, locus text not null, iter integer not null, bits text not null)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%q: %s", err, stmt)
		}
	}

	l := &SQLiteLogger{db: db}
	prepared := []struct {
		stmt **sql.Stmt
		sql  string
	}{
		{&l.insertLikelihood, `insert into likelihood(iter, value) values(?, ?)`},
		{&l.insertParentSet, `insert into parent_set_posterior(child, parent, prob, iter) values(?, ?, ?, ?)`},
		{&l.insertScalar, `insert into scalar_parameter(category, id, iter, value) values(?, ?, ?, ?)`},
		{&l.insertFrequencies, `insert into allele_frequencies(locus, iter, frequencies) values(?, ?, ?)`},
		{&l.insertGenotype, `insert into genotype(id, locus, iter, bits) values(?, ?, ?, ?)`},
		{&l.insertLatentParent, `insert into latent_parent_genotype(id, locus, iter, bits) values(?, ?, ?, ?)`},
	}
	for _, p := range prepared {
		stmt, err := db.Prepare(p.sql)
		if err != nil {
			db.Close()
			return nil, err
		}
		*p.stmt = stmt
	}
	return l, nil
}

// LogLikelihood inserts one row into the likelihood table.
func (l *SQLiteLogger) LogLikelihood(iter int, value float64) error {
	_, err := l.insertLikelihood.Exec(iter, value)
	return err
}

// LogParentSetPosterior inserts one row per candidate into the
// parent_set_posterior table.
func (l *SQLiteLogger) LogParentSetPosterior(child *InfectionEvent, iter int, posterior map[string]float64) error {
	for parentID, prob := range posterior {
		if _, err := l.insertParentSet.Exec(child.ID(), parentID, prob, iter); err != nil {
			return err
		}
	}
	return nil
}

// LogScalar inserts one row into the scalar_parameter table.
func (l *SQLiteLogger) LogScalar(category, id string, iter int, value float64) error {
	_, err := l.insertScalar.Exec(category, id, iter, value)
	return err
}

// LogAlleleFrequencies inserts one row into the allele_frequencies table,
// storing the simplex as a comma-separated string.
func (l *SQLiteLogger) LogAlleleFrequencies(locus string, iter int, freqs Simplex) error {
	line := ""
	for i := 0; i < freqs.Len(); i++ {
		if i > 0 {
			line += ","
		}
		line += fmt.Sprintf("%g", freqs.At(i))
	}
	_, err := l.insertFrequencies.Exec(locus, iter, line)
	return err
}

// LogGenotype inserts one row into the genotype table.
func (l *SQLiteLogger) LogGenotype(id, locus string, iter int, g Genotype) error {
	_, err := l.insertGenotype.Exec(id, locus, iter, g.String())
	return err
}

// LogLatentParentGenotype inserts one row into the
// latent_parent_genotype table.
func (l *SQLiteLogger) LogLatentParentGenotype(id, locus string, iter int, g Genotype) error {
	_, err := l.insertLatentParent.Exec(id, locus, iter, g.String())
	return err
}

// Close releases every prepared statement and the database handle.
func (l *SQLiteLogger) Close() error {
	for _, stmt := range []*sql.Stmt{
		l.insertLikelihood, l.insertParentSet, l.insertScalar,
		l.insertFrequencies, l.insertGenotype, l.insertLatentParent,
	} {
		stmt.Close()
	}
	return l.db.Close()
}
