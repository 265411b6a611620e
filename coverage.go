package giellamorph

import (
	"bufio"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CoverageReport counts how many dictionary lemmas can be generated.
type CoverageReport struct {
	Lang         string
	Total        int
	NotGenerated int
	NotAnalysed  int
	// Failed lists the lemmas that produced no paradigm, sorted.
	Failed []LemmaPOS
}

// ReadLemmaList reads "lemma<TAB>pos" lines. Blank lines and lines
// starting with # are skipped.
func ReadLemmaList(r io.Reader) ([]LemmaPOS, error) {
	var out []LemmaPOS
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lemma, pos, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		out = append(out, LemmaPOS{Lemma: strings.TrimSpace(lemma), POS: strings.TrimSpace(pos)})
	}
	return out, sc.Err()
}

// CheckCoverage runs GenerateAndCheck for every lemma whose part of speech
// has templates, using up to workers goroutines. Proper nouns are
// generated as nouns.
func CheckCoverage(ctx context.Context, e *Engine, lemmas []LemmaPOS, workers int) (CoverageReport, error) {
	if workers < 1 {
		workers = 1
	}
	report := CoverageReport{Lang: e.Lang}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, lp := range lemmas {
		if lp.POS == POSProper {
			lp.POS = POSNoun
		}
		if lp.Lemma == "" || len(e.generator.templates[lp.POS]) == 0 {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cells, err := e.Paradigm(lp.Lemma, lp.POS)
			if err != nil {
				return err
			}
			var analyses []Reading
			if len(cells) == 0 {
				if analyses, err = e.Analyse(lp.Lemma); err != nil {
					return err
				}
			}

			mu.Lock()
			defer mu.Unlock()
			report.Total++
			if len(cells) == 0 {
				report.NotGenerated++
				report.Failed = append(report.Failed, lp)
				if len(analyses) == 0 {
					report.NotAnalysed++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	sort.Slice(report.Failed, func(i, j int) bool {
		a, b := report.Failed[i], report.Failed[j]
		if a.POS != b.POS {
			return a.POS < b.POS
		}
		return a.Lemma < b.Lemma
	})
	return report, nil
}
