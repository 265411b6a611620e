package lookupstore

import (
	"errors"
	"fmt"

	"github.com/satni-dict/giellamorph"
)

// Backend names registered with giellamorph.
const (
	BackendSQLite     = "sqlite"
	BackendHFSTSQLite = "hfst+sqlite"
)

func init() {
	giellamorph.RegisterBackend(BackendSQLite, openSQLite)
	giellamorph.RegisterBackend(BackendHFSTSQLite, openRecordingHFST)
}

// Transducer answers lookups of dir from the store only. Inputs that were
// never stored have no readings.
func (s *Store) Transducer(dir giellamorph.Direction) giellamorph.Transducer {
	return &storeTransducer{store: s, dir: dir}
}

type storeTransducer struct {
	store *Store
	dir   giellamorph.Direction
	owned bool
}

func (t *storeTransducer) Lookup(input string) ([]giellamorph.Reading, error) {
	readings, _, err := t.store.Get(t.dir, input)
	return readings, err
}

func (t *storeTransducer) Close() error {
	if !t.owned {
		return nil
	}
	return t.store.Close()
}

// Recorder answers lookups of dir from the store and falls back to next
// for inputs not stored yet, storing what next returns.
func (s *Store) Recorder(dir giellamorph.Direction, next giellamorph.Transducer) giellamorph.Transducer {
	return &recorder{store: s, dir: dir, next: next}
}

type recorder struct {
	store *Store
	dir   giellamorph.Direction
	next  giellamorph.Transducer
	owned bool
}

func (r *recorder) Lookup(input string) ([]giellamorph.Reading, error) {
	readings, found, err := r.store.Get(r.dir, input)
	if err != nil {
		return nil, err
	}
	if found {
		return readings, nil
	}
	if readings, err = r.next.Lookup(input); err != nil {
		return nil, err
	}
	if err := r.store.Put(r.dir, input, readings); err != nil {
		return nil, fmt.Errorf("record %q: %w", input, err)
	}
	return readings, nil
}

func (r *recorder) Close() error {
	var errs []error
	if c, ok := r.next.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if r.owned {
		errs = append(errs, r.store.Close())
	}
	return errors.Join(errs...)
}

func openSQLite(_ *giellamorph.Config, lang giellamorph.LanguageConfig, dir giellamorph.Direction) (giellamorph.Transducer, error) {
	if lang.Store == "" {
		return nil, fmt.Errorf("language %s: sqlite backend needs a store", lang.Code)
	}
	s, err := Open(lang.Store)
	if err != nil {
		return nil, err
	}
	return &storeTransducer{store: s, dir: dir, owned: true}, nil
}

func openRecordingHFST(cfg *giellamorph.Config, lang giellamorph.LanguageConfig, dir giellamorph.Direction) (giellamorph.Transducer, error) {
	if lang.Store == "" {
		return nil, fmt.Errorf("language %s: %s backend needs a store", lang.Code, BackendHFSTSQLite)
	}
	path := lang.Analyser
	if dir == giellamorph.Generation {
		path = lang.Generator
	}
	hfst, err := giellamorph.StartHFST(cfg.LookupCommand, path)
	if err != nil {
		return nil, err
	}
	s, err := Open(lang.Store)
	if err != nil {
		hfst.Close()
		return nil, err
	}
	return &recorder{store: s, dir: dir, next: hfst, owned: true}, nil
}
