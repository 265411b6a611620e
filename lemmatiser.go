package giellamorph

import (
	"sort"
	"strings"
)

// Lemmatiser derives citation forms from inflected wordforms. With a rule
// set it classifies the ending tags of every analysis and regenerates the
// citation form; without one it falls back to the stem of each analysis.
type Lemmatiser struct {
	oracle Oracle
	rules  *RuleSet
}

// NewLemmatiser returns a lemmatiser. rules may be nil.
func NewLemmatiser(oracle Oracle, rules *RuleSet) *Lemmatiser {
	return &Lemmatiser{oracle: oracle, rules: rules}
}

// Rules returns the rule set, or nil for a stem-only lemmatiser.
func (l *Lemmatiser) Rules() *RuleSet {
	return l.rules
}

// Analyse returns the usable analyses of word.
func (l *Lemmatiser) Analyse(word string) ([]Reading, error) {
	return l.oracle.Analyse(word)
}

// Lemmatise returns the sorted, deduplicated citation forms of every
// analysis of word. An analysis the rule set cannot classify aborts the
// call with an *UnmodelledPatternError.
func (l *Lemmatiser) Lemmatise(word string) ([]string, error) {
	analyses, err := l.Analyse(word)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, a := range analyses {
		forms, err := l.CitationForms(a.Form)
		if err != nil {
			return nil, err
		}
		for _, f := range forms {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// CitationForms returns the citation forms of a single analysis.
func (l *Lemmatiser) CitationForms(analysis string) ([]string, error) {
	rs := l.rules
	if rs == nil || rs.invariantStem(analysis) {
		return []string{Stem(analysis)}, nil
	}

	members, tail := splitLastCompound(analysis)
	prefix := ""
	if len(members) > 0 {
		var err error
		if prefix, err = l.compoundPrefix(analysis, members); err != nil {
			return nil, err
		}
	}

	start := RemoveLastTags(rs.stripComparison(tail))
	ending := EndingTags(rs.CleanAnalysis(tail))
	if rs.invariantEnding(ending) {
		return []string{prefix + Stem(tail)}, nil
	}

	citation, ok := rs.Classify(ending)
	if !ok {
		return nil, &UnmodelledPatternError{Analysis: analysis, EndingTags: ending}
	}
	generated, err := l.oracle.Generate(start + citation)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(generated))
	for _, g := range generated {
		out = append(out, prefix+g.Form)
	}
	return out, nil
}

// compoundPrefix regenerates the citation form of every leading compound
// member and joins them, each followed by the compound joiner.
func (l *Lemmatiser) compoundPrefix(analysis string, members []string) (string, error) {
	var b strings.Builder
	for _, m := range members {
		full, ok := l.rules.expandCompoundForm(m)
		if !ok {
			return "", &UnmodelledPatternError{Analysis: analysis, EndingTags: EndingTags(m)}
		}
		generated, err := l.oracle.Generate(full)
		if err != nil {
			return "", err
		}
		if len(generated) > 0 {
			b.WriteString(generated[0].Form)
		} else {
			b.WriteString(Stem(m))
		}
		b.WriteString(l.rules.compoundJoiner)
	}
	return b.String(), nil
}
