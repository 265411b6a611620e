package giellamorph

import (
	"iter"
	"slices"
	"strings"
)

// Generator builds paradigms for a stem by running every paradigm template
// of a part of speech through the generating transducer.
type Generator struct {
	oracle           Oracle
	templates        Templates
	citationSuffixes map[string][]string
}

// NewGenerator returns a generator over templates. citationSuffixes lists,
// per part of speech, the tag suffixes of citation forms; they drive the
// best-analysis recovery of GenerateAndCheck.
func NewGenerator(oracle Oracle, templates Templates, citationSuffixes map[string][]string) *Generator {
	if citationSuffixes == nil {
		citationSuffixes = DefaultCitationSuffixes
	}
	return &Generator{
		oracle:           oracle,
		templates:        templates,
		citationSuffixes: citationSuffixes,
	}
}

// Templates returns the paradigm templates of pos.
func (g *Generator) Templates(pos string) []string {
	return slices.Clone(g.templates[pos])
}

// POS returns the parts of speech this generator has templates for.
func (g *Generator) POS() []string {
	return g.templates.POS()
}

// Generate returns the usable wordforms of stem inflected by template.
func (g *Generator) Generate(stem, template string) ([]Reading, error) {
	return g.oracle.Generate(stem + template)
}

// Wordforms lazily walks the templates of pos and yields one cell per
// template that produced at least one wordform. Iteration stops after the
// first error.
func (g *Generator) Wordforms(stem, pos string) iter.Seq2[ParadigmCell, error] {
	return func(yield func(ParadigmCell, error) bool) {
		if stem == "" {
			return
		}
		for _, template := range g.templates[pos] {
			forms, err := g.Generate(stem, template)
			if err != nil {
				yield(ParadigmCell{}, err)
				return
			}
			if len(forms) == 0 {
				continue
			}
			if !yield(ParadigmCell{Template: template, Forms: forms}, nil) {
				return
			}
		}
	}
}

// Paradigm collects Wordforms into a slice.
func (g *Generator) Paradigm(stem, pos string) ([]ParadigmCell, error) {
	var cells []ParadigmCell
	for cell, err := range g.Wordforms(stem, pos) {
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// GenerateAndCheck generates the paradigm of stem. When nothing can be
// generated, the stem is analysed and regenerated from its best analysis;
// dictionary lemmas sometimes carry material the generator does not
// expect, such as a compound or a numbered variant.
func (g *Generator) GenerateAndCheck(stem, pos string) ([]ParadigmCell, error) {
	cells, err := g.Paradigm(stem, pos)
	if err != nil || len(cells) > 0 {
		return cells, err
	}
	if len(g.citationSuffixes[pos]) == 0 {
		return nil, nil
	}
	best, err := g.FindBestAnalysis(stem, pos)
	if err != nil {
		return nil, err
	}
	return g.Paradigm(best, pos)
}

// FindBestAnalysis analyses stem and returns the analysis that ends in a
// citation suffix of pos, with that suffix removed. Non-compound analyses
// win; among compounds the one with the fewest members wins, the first
// seen breaking ties. It returns "" when no analysis qualifies.
func (g *Generator) FindBestAnalysis(stem, pos string) (string, error) {
	suffixes := g.citationSuffixes[pos]
	if len(suffixes) == 0 {
		return "", nil
	}
	analyses, err := g.oracle.Analyse(stem)
	if err != nil {
		return "", err
	}
	slices.SortStableFunc(analyses, func(a, b Reading) int {
		switch {
		case a.Weight < b.Weight:
			return -1
		case a.Weight > b.Weight:
			return 1
		}
		return 0
	})

	var plain, compound []string
	for _, suffix := range suffixes {
		for _, a := range analyses {
			base, ok := strings.CutSuffix(a.Form, suffix)
			if !ok || base == "" {
				continue
			}
			if IsCompound(base) {
				compound = append(compound, base)
			} else {
				plain = append(plain, base)
			}
		}
	}

	if len(plain) > 0 {
		return plain[0], nil
	}
	best, fewest := "", 0
	for _, c := range compound {
		n := strings.Count(c, CompoundBoundary) + 1
		if best == "" || n < fewest {
			best, fewest = c, n
		}
	}
	return best, nil
}
