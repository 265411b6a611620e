package giellamorph

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"gopkg.in/yaml.v3"
)

//go:embed rules/*.yaml
var builtinRules embed.FS

// DefaultCitationSuffixes are used for best-analysis recovery when a
// language has no rule table of its own.
var DefaultCitationSuffixes = map[string][]string{
	POSNoun: {"+N+Sg+Nom"},
}

// ClassificationRule maps ending tags matched by Pattern to the tag suffix
// of the citation form.
type ClassificationRule struct {
	Name     string
	Pattern  string
	Citation string

	re *regexp.Regexp
}

// RuleSet holds the per-language tables of the lemmatiser. It is immutable
// once built.
type RuleSet struct {
	classifications  []ClassificationRule
	removable        []*regexp.Regexp
	literalTags      []string
	stripper         *ahocorasick.Automaton
	comparison       *regexp.Regexp
	invariantTags    map[string]bool
	invariantStems   map[string]bool
	compoundForms    map[string]string
	compoundJoiner   string
	citationSuffixes map[string][]string
}

// ruleFile is the YAML shape of a rule table.
type ruleFile struct {
	Classifications []struct {
		Name     string `yaml:"name"`
		Pattern  string `yaml:"pattern"`
		Citation string `yaml:"citation"`
	} `yaml:"classifications"`
	RemovablePatterns []string            `yaml:"removable_patterns"`
	RemovableTags     []string            `yaml:"removable_tags"`
	StripTransitivity bool                `yaml:"strip_transitivity"`
	TransitivityTags  []string            `yaml:"transitivity_tags"`
	ComparisonPattern string              `yaml:"comparison_pattern"`
	InvariantTags     []string            `yaml:"invariant_tags"`
	InvariantStems    []string            `yaml:"invariant_stems"`
	CompoundForms     map[string]string   `yaml:"compound_forms"`
	CompoundJoiner    string              `yaml:"compound_joiner"`
	CitationSuffixes  map[string][]string `yaml:"citation_suffixes"`
}

// ParseRuleSet reads a YAML rule table.
func ParseRuleSet(r io.Reader) (*RuleSet, error) {
	var rf ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return rf.compile()
}

// LoadRuleSet reads the YAML rule table at path.
func LoadRuleSet(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError("open rules", path, err)
	}
	defer f.Close()

	rs, err := ParseRuleSet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// HasBuiltinRules reports whether a rule table for lang is compiled in.
func HasBuiltinRules(lang string) bool {
	_, err := builtinRules.ReadFile("rules/" + lang + ".yaml")
	return err == nil
}

// BuiltinRuleSet returns the compiled-in rule table for lang.
func BuiltinRuleSet(lang string) (*RuleSet, error) {
	data, err := builtinRules.ReadFile("rules/" + lang + ".yaml")
	if err != nil {
		return nil, sourceError("read builtin rules", lang, err)
	}
	return ParseRuleSet(bytes.NewReader(data))
}

func (rf ruleFile) compile() (*RuleSet, error) {
	rs := &RuleSet{
		invariantTags:    toSet(rf.InvariantTags),
		invariantStems:   toSet(rf.InvariantStems),
		compoundForms:    rf.CompoundForms,
		compoundJoiner:   rf.CompoundJoiner,
		citationSuffixes: rf.CitationSuffixes,
	}
	if rs.compoundForms == nil {
		rs.compoundForms = map[string]string{}
	}
	if rs.citationSuffixes == nil {
		rs.citationSuffixes = DefaultCitationSuffixes
	}

	for _, c := range rf.Classifications {
		re, err := compileAnchored(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("classification %s: %w", c.Name, err)
		}
		if c.Citation == "" {
			return nil, fmt.Errorf("classification %s: empty citation", c.Name)
		}
		rs.classifications = append(rs.classifications, ClassificationRule{
			Name:     c.Name,
			Pattern:  c.Pattern,
			Citation: c.Citation,
			re:       re,
		})
	}

	if rf.ComparisonPattern != "" {
		re, err := regexp.Compile(rf.ComparisonPattern)
		if err != nil {
			return nil, fmt.Errorf("comparison pattern: %w", err)
		}
		rs.comparison = re
		rs.removable = append(rs.removable, re)
	}
	for _, p := range rf.RemovablePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("removable pattern: %w", err)
		}
		rs.removable = append(rs.removable, re)
	}

	rs.literalTags = append(rs.literalTags, rf.RemovableTags...)
	if rf.StripTransitivity {
		rs.literalTags = append(rs.literalTags, rf.TransitivityTags...)
	}
	if len(rs.literalTags) > 0 {
		ac, err := ahocorasick.NewBuilder().
			AddStrings(rs.literalTags).
			SetMatchKind(ahocorasick.LeftmostLongest).
			Build()
		if err != nil {
			return nil, fmt.Errorf("build tag stripper: %w", err)
		}
		rs.stripper = ac
	}
	return rs, nil
}

// compileAnchored compiles p so that it only matches at the start of the
// input.
func compileAnchored(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)`)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// Classifications returns the rules in evaluation order.
func (rs *RuleSet) Classifications() []ClassificationRule {
	out := make([]ClassificationRule, len(rs.classifications))
	copy(out, rs.classifications)
	return out
}

// CitationSuffixes returns the citation tag suffixes known for pos.
func (rs *RuleSet) CitationSuffixes(pos string) []string {
	return rs.citationSuffixes[pos]
}

// Classify returns the citation suffix of the first rule matching
// endingTags.
func (rs *RuleSet) Classify(endingTags string) (string, bool) {
	for _, c := range rs.classifications {
		if c.re.MatchString(endingTags) {
			return c.Citation, true
		}
	}
	return "", false
}

// CleanAnalysis removes decorative tags (semantic, possessive, focus,
// version, question and, when configured, transitivity tags) as well as
// adjective comparison derivations. Removal is repeated until nothing
// matches, so CleanAnalysis(CleanAnalysis(s)) == CleanAnalysis(s).
func (rs *RuleSet) CleanAnalysis(s string) string {
	for {
		prev := s
		for _, re := range rs.removable {
			s = re.ReplaceAllString(s, "")
		}
		s = rs.stripLiteralTags(s)
		if s == prev {
			return s
		}
	}
}

// stripLiteralTags removes every occurrence of the literal removable tags
// in one leftmost-longest pass over s.
func (rs *RuleSet) stripLiteralTags(s string) string {
	if rs.stripper == nil || s == "" {
		return s
	}
	matches := rs.stripper.FindAllOverlapping([]byte(s))
	if len(matches) == 0 {
		return s
	}
	type span struct{ start, end int }
	spans := make([]span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, span{m.Start, m.End})
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.start < pos {
			continue
		}
		b.WriteString(s[pos:sp.start])
		pos = sp.end
	}
	b.WriteString(s[pos:])
	return b.String()
}

// stripComparison removes adjective comparison derivations so that the
// positive form is regenerated.
func (rs *RuleSet) stripComparison(s string) string {
	if rs.comparison == nil {
		return s
	}
	return rs.comparison.ReplaceAllString(s, "")
}

// invariantEnding reports whether the first tag of endingTags belongs to
// a part of speech whose citation form is the stem itself.
func (rs *RuleSet) invariantEnding(endingTags string) bool {
	tags := strings.SplitN(strings.TrimPrefix(endingTags, TagSeparator), TagSeparator, 2)
	return rs.invariantTags[tags[0]]
}

// invariantStem reports whether analysis starts with an invariant stem.
func (rs *RuleSet) invariantStem(analysis string) bool {
	return strings.Contains(analysis, TagSeparator) && rs.invariantStems[Stem(analysis)]
}

// expandCompoundForm replaces the compound-form tag closing member, such
// as +Cmp/SgGen, with the full inflection it abbreviates.
func (rs *RuleSet) expandCompoundForm(member string) (string, bool) {
	full, ok := rs.compoundForms[lastTag(member)]
	if !ok {
		return "", false
	}
	return RemoveLastTag(member) + full, true
}

// RemoveLastTag drops the final tag of s.
func RemoveLastTag(s string) string {
	if i := strings.LastIndex(s, TagSeparator); i >= 0 {
		return s[:i]
	}
	return s
}
