package giellamorph

import (
	"fmt"
	"sort"
	"sync"
)

// Direction selects one side of a language's oracle.
type Direction string

const (
	Analysis   Direction = "analyse"
	Generation Direction = "generate"
)

// BackendOpener opens the transducer of one direction of a language.
type BackendOpener func(cfg *Config, lang LanguageConfig, dir Direction) (Transducer, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendOpener{
		BackendHFST:  openHFST,
		BackendTable: openTable,
	}
)

// RegisterBackend makes a transducer backend available under name.
// Packages providing backends call it from init.
func RegisterBackend(name string, opener BackendOpener) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = opener
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func openTransducer(cfg *Config, lang LanguageConfig, dir Direction) (Transducer, error) {
	backendsMu.RLock()
	opener, ok := backends[lang.Backend]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("language %s: unknown backend %q", lang.Code, lang.Backend)
	}
	return opener(cfg, lang, dir)
}

// pathFor returns the file configured for dir.
func (l LanguageConfig) pathFor(dir Direction) string {
	if dir == Analysis {
		return l.Analyser
	}
	return l.Generator
}

func openHFST(cfg *Config, lang LanguageConfig, dir Direction) (Transducer, error) {
	return StartHFST(cfg.LookupCommand, lang.pathFor(dir))
}

func openTable(_ *Config, lang LanguageConfig, dir Direction) (Transducer, error) {
	return LoadTable(lang.pathFor(dir))
}
