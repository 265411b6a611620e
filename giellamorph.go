// Package giellamorph derives dictionary citation forms from inflected
// Sámi and Finnic wordforms and generates full inflectional paradigms
// from a lemma, on top of the Giella finite-state transducers.
//
// The package has three parts sharing the tag-string conventions of the
// transducers (stem+Tag+Tag...):
//
//   - BuildTemplates expands a paradigm grammar and a tag class catalog
//     into the paradigm templates of every part of speech.
//   - Generator runs those templates through the generating transducer,
//     recovering a generatable stem from the analyser when a lemma cannot
//     be generated directly.
//   - Lemmatiser classifies the ending tags of each analysis of a wordform
//     and regenerates the citation form, compounds included.
//
// An Engine bundles the three for one language. Engines are immutable and
// safe for concurrent use. They are reference counted: the transducers are
// released when the last holder lets go.
package giellamorph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"
)

// Engine holds the oracle and tables of one language.
type Engine struct {
	Lang       string
	generator  *Generator
	lemmatiser *Lemmatiser
	closers    []io.Closer

	refs      atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// NewEngine assembles an engine from already loaded parts. rules may be
// nil, in which case the lemmatiser only returns analysis stems and the
// generator recovers with DefaultCitationSuffixes.
func NewEngine(lang string, oracle Oracle, templates Templates, rules *RuleSet) *Engine {
	var suffixes map[string][]string
	if rules != nil {
		suffixes = rules.citationSuffixes
	}
	e := &Engine{
		Lang:       lang,
		generator:  NewGenerator(oracle, templates, suffixes),
		lemmatiser: NewLemmatiser(oracle, rules),
	}
	e.refs.Store(1)
	for _, t := range []Transducer{oracle.Analyser, oracle.Generator} {
		if c, ok := t.(io.Closer); ok {
			e.closers = append(e.closers, c)
		}
	}
	return e
}

// OpenEngine loads the language configured under code. Missing sources
// abort construction with an error wrapping ErrSourceUnavailable.
func OpenEngine(cfg *Config, code string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lc, ok := cfg.Language(code)
	if !ok {
		return nil, fmt.Errorf("language %s is not configured", code)
	}

	oracle, closers, err := openOracle(cfg, lc)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Engine, error) {
		closeAll(closers)
		return nil, err
	}

	templates, err := loadLanguageTemplates(lc, logger)
	if err != nil {
		return fail(err)
	}

	var rules *RuleSet
	switch {
	case lc.Rules != "":
		rules, err = LoadRuleSet(lc.Rules)
	case HasBuiltinRules(code):
		rules, err = BuiltinRuleSet(code)
	}
	if err != nil {
		return fail(err)
	}

	e := NewEngine(code, oracle, templates, rules)
	e.closers = closers
	logger.Info("language loaded",
		"lang", code,
		"backend", lc.Backend,
		"pos", templates.POS(),
		"rules", rules != nil)
	return e, nil
}

func openOracle(cfg *Config, lc LanguageConfig) (Oracle, []io.Closer, error) {
	var (
		oracle  Oracle
		closers []io.Closer
	)
	for _, dir := range []Direction{Analysis, Generation} {
		t, err := openTransducer(cfg, lc, dir)
		if err != nil {
			closeAll(closers)
			return Oracle{}, nil, fmt.Errorf("language %s %s: %w", lc.Code, dir, err)
		}
		if c, ok := t.(io.Closer); ok {
			closers = append(closers, c)
		}
		if cfg.CacheSize > 0 {
			if t, err = NewCachedTransducer(t, cfg.CacheSize); err != nil {
				closeAll(closers)
				return Oracle{}, nil, err
			}
		}
		if dir == Analysis {
			oracle.Analyser = t
		} else {
			oracle.Generator = t
		}
	}
	return oracle, closers, nil
}

func loadLanguageTemplates(lc LanguageConfig, logger *slog.Logger) (Templates, error) {
	switch {
	case lc.Grammar != "" && lc.Tags != "":
		return BuildTemplatesFromFiles(lc.Grammar, lc.Tags)
	case lc.Templates != "":
		return LoadTemplates(lc.Templates)
	}
	logger.Warn("no paradigm templates configured", "lang", lc.Code)
	return Templates{}, nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Generator returns the paradigm generator.
func (e *Engine) Generator() *Generator {
	return e.generator
}

// Lemmatiser returns the lemmatiser.
func (e *Engine) Lemmatiser() *Lemmatiser {
	return e.lemmatiser
}

// Lemmatise returns the citation forms of word.
func (e *Engine) Lemmatise(word string) ([]string, error) {
	return e.lemmatiser.Lemmatise(norm.NFC.String(word))
}

// Analyse returns the usable analyses of word.
func (e *Engine) Analyse(word string) ([]Reading, error) {
	return e.lemmatiser.Analyse(norm.NFC.String(word))
}

// Paradigm generates the paradigm of lemma, falling back to best-analysis
// recovery when the lemma cannot be generated as recorded.
func (e *Engine) Paradigm(lemma, pos string) ([]ParadigmCell, error) {
	return e.generator.GenerateAndCheck(norm.NFC.String(lemma), pos)
}

// Retain adds a holder to e. Every Retain is paired with a Release.
func (e *Engine) Retain() *Engine {
	e.refs.Add(1)
	return e
}

// Release drops one holder. The transducers are closed when the last
// holder, the creator included, has released the engine.
func (e *Engine) Release() error {
	if e.refs.Add(-1) > 0 {
		return nil
	}
	e.closeOnce.Do(func() { e.closeErr = closeAll(e.closers) })
	return e.closeErr
}

// Close releases the creator's hold on the engine.
func (e *Engine) Close() error {
	return e.Release()
}
