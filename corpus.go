package giellamorph

import (
	"errors"
	"io"
	"sort"
	"strings"
)

// corpusSkipTags mark analyses that are not words the lemmatiser is meant
// to handle: split compounds, punctuation, clause boundaries and symbols.
var corpusSkipTags = []string{"+Cmp/SplitR", "+PUNCT", "+CLB", "+Arab", "+Symbol", "+Num+Rom"}

// CorpusReport summarises how a lemmatiser copes with analysed corpus text.
type CorpusReport struct {
	Lines   int
	Checked int
	Skipped int
	// Unmodelled holds one error per distinct analysis the rule set could
	// not classify, in order of first appearance.
	Unmodelled []*UnmodelledPatternError
	// EndingTags is the sorted inventory of distinct ending tags seen,
	// after cleaning, in the last compound member.
	EndingTags []string
}

// CheckCorpus reads hfst-lookup output (surface<TAB>analysis<TAB>weight)
// and runs every usable analysis through the lemmatiser. Unclassifiable
// analyses are collected instead of aborting the run.
func CheckCorpus(l *Lemmatiser, r io.Reader) (CorpusReport, error) {
	var report CorpusReport
	seen := make(map[string]bool)
	endings := make(map[string]bool)

	err := ScanLookupOutput(r, func(line LookupLine) error {
		report.Lines++
		analysis := line.Form
		if !Usable(analysis) || containsAny(analysis, corpusSkipTags) {
			report.Skipped++
			return nil
		}
		analysis = StripFlagDiacritics(analysis)
		report.Checked++

		cleaned := analysis
		if rs := l.Rules(); rs != nil {
			cleaned = rs.CleanAnalysis(analysis)
		}
		_, tail := splitLastCompound(cleaned)
		endings[EndingTags(strings.TrimSpace(tail))] = true

		_, err := l.CitationForms(analysis)
		var unmodelled *UnmodelledPatternError
		switch {
		case errors.As(err, &unmodelled):
			if !seen[analysis] {
				seen[analysis] = true
				report.Unmodelled = append(report.Unmodelled, unmodelled)
			}
		case err != nil:
			return err
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for e := range endings {
		report.EndingTags = append(report.EndingTags, e)
	}
	sort.Strings(report.EndingTags)
	return report, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
