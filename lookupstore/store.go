// Package lookupstore keeps transducer lookups in a SQLite database. A
// store can serve as a transducer on its own, filled from hfst-lookup
// output, or record the results of a live transducer so that repeated
// lookups survive restarts.
//
// Importing the package registers the "sqlite" and "hfst+sqlite"
// backends with giellamorph.
package lookupstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/satni-dict/giellamorph"
)

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	direction TEXT NOT NULL,
	input TEXT NOT NULL,
	seq INTEGER NOT NULL,
	output TEXT NOT NULL,
	weight REAL NOT NULL,
	PRIMARY KEY (direction, input, seq)
);
CREATE TABLE IF NOT EXISTS misses (
	direction TEXT NOT NULL,
	input TEXT NOT NULL,
	PRIMARY KEY (direction, input)
);
`

// Store is a SQLite-backed lookup table.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored readings of input. found is false when input has
// never been stored; a stored empty result is found with no readings.
func (s *Store) Get(dir giellamorph.Direction, input string) ([]giellamorph.Reading, bool, error) {
	rows, err := s.db.Query(
		`SELECT output, weight FROM lookups WHERE direction = ? AND input = ? ORDER BY seq`,
		string(dir), input)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var readings []giellamorph.Reading
	for rows.Next() {
		var r giellamorph.Reading
		if err := rows.Scan(&r.Form, &r.Weight); err != nil {
			return nil, false, err
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(readings) > 0 {
		return readings, true, nil
	}

	var one int
	err = s.db.QueryRow(
		`SELECT 1 FROM misses WHERE direction = ? AND input = ?`, string(dir), input).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return nil, true, nil
}

// Put replaces the stored readings of input.
func (s *Store) Put(dir giellamorph.Direction, input string, readings []giellamorph.Reading) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := put(tx, dir, input, readings); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func put(tx *sql.Tx, dir giellamorph.Direction, input string, readings []giellamorph.Reading) error {
	d := string(dir)
	if _, err := tx.Exec(`DELETE FROM lookups WHERE direction = ? AND input = ?`, d, input); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM misses WHERE direction = ? AND input = ?`, d, input); err != nil {
		return err
	}
	if len(readings) == 0 {
		_, err := tx.Exec(`INSERT INTO misses (direction, input) VALUES (?, ?)`, d, input)
		return err
	}
	for i, r := range readings {
		_, err := tx.Exec(
			`INSERT INTO lookups (direction, input, seq, output, weight) VALUES (?, ?, ?, ?, ?)`,
			d, input, i, r.Form, r.Weight)
		if err != nil {
			return err
		}
	}
	return nil
}

// Import stores hfst-lookup output for dir and returns the number of
// distinct inputs imported. Readings of one input keep their order.
func (s *Store) Import(dir giellamorph.Direction, r io.Reader) (int, error) {
	var order []string
	grouped := make(map[string][]giellamorph.Reading)
	err := giellamorph.ScanLookupOutput(r, func(l giellamorph.LookupLine) error {
		if _, ok := grouped[l.Input]; !ok {
			order = append(order, l.Input)
		}
		grouped[l.Input] = append(grouped[l.Input], l.Reading)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read lookup output: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	for _, input := range order {
		if err := put(tx, dir, input, grouped[input]); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("store %q: %w", input, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(order), nil
}

// Count returns the number of distinct stored inputs of dir.
func (s *Store) Count(dir giellamorph.Direction) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT (SELECT COUNT(DISTINCT input) FROM lookups WHERE direction = ?) +
		        (SELECT COUNT(*) FROM misses WHERE direction = ?)`,
		string(dir), string(dir)).Scan(&n)
	return n, err
}
