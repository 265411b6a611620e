package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satni-dict/giellamorph"
	"github.com/satni-dict/giellamorph/lookupstore"
)

func taglistCmd(g *globalFlags) *cobra.Command {
	var grammar, tags, out, gtlangs, outDir string
	cmd := &cobra.Command{
		Use:   "taglist",
		Short: "Expand paradigm grammars into template files",
		Long: `Expand a paradigm grammar and a korpustags file into paradigm templates.

Either give --grammar, --tags and --out for a single language, or --gtlangs
to build every lang-*/test/data/korpustags.*.txt found below that directory.

Tag files are read header first: a "#Name" line opens the class Name and the
lines after it, up to the next header, are its tags. Tags listed before the
first header belong to no class. Files laid out with the class name after its
tags need their headers moved to the top of each block.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gtlangs != "" {
				if outDir == "" {
					cfg, err := g.config()
					if err != nil {
						return err
					}
					outDir = cfg.TemplateDir
				}
				return buildAll(cmd, gtlangs, outDir)
			}
			if grammar == "" || tags == "" || out == "" {
				return errors.New("need --grammar, --tags and --out, or --gtlangs")
			}
			t, err := giellamorph.BuildTemplatesFromFiles(grammar, tags)
			if err != nil {
				return err
			}
			if err := t.Save(out); err != nil {
				return err
			}
			printTemplateSummary(cmd, out, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&grammar, "grammar", "", "Paradigm grammar file")
	cmd.Flags().StringVar(&tags, "tags", "", "Tag class (korpustags) file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output template file (JSON)")
	cmd.Flags().StringVar(&gtlangs, "gtlangs", os.Getenv("GTLANGS"), "Directory holding lang-* checkouts")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory for --gtlangs (default: template_dir)")
	return cmd
}

func buildAll(cmd *cobra.Command, root, outDir string) error {
	sources, err := giellamorph.DiscoverSources(root)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no korpustags files below %s", root)
	}
	for _, src := range sources {
		t, err := giellamorph.BuildTemplatesFromFiles(src.Grammar, src.Tags)
		if errors.Is(err, giellamorph.ErrSourceUnavailable) {
			slog.Warn("skipping language", "lang", src.Lang, "error", err)
			continue
		}
		if err != nil {
			return err
		}
		out := filepath.Join(outDir, src.Lang+".json")
		if err := t.Save(out); err != nil {
			return err
		}
		printTemplateSummary(cmd, out, t)
	}
	return nil
}

func printTemplateSummary(cmd *cobra.Command, out string, t giellamorph.Templates) {
	parts := make([]string, 0, len(t))
	for _, pos := range t.POS() {
		parts = append(parts, fmt.Sprintf("%s=%d", pos, len(t[pos])))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out, strings.Join(parts, " "))
}

func lemmatiseCmd(g *globalFlags) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "lemmatise [word...]",
		Short: "Print the citation forms of wordforms (stdin when no args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.engine(lang)
			if err != nil {
				return err
			}
			defer e.Close()
			ws, err := words(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			for _, w := range ws {
				lemmas, err := e.Lemmatise(w)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", w, strings.Join(lemmas, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "sme", "Language code")
	return cmd
}

func analyseCmd(g *globalFlags) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "analyse [word...]",
		Short: "Print the usable analyses of wordforms (stdin when no args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.engine(lang)
			if err != nil {
				return err
			}
			defer e.Close()
			ws, err := words(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			for _, w := range ws {
				analyses, err := e.Analyse(w)
				if err != nil {
					return err
				}
				for _, a := range analyses {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%g\n", w, a.Form, a.Weight)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "sme", "Language code")
	return cmd
}

func generateCmd(g *globalFlags) *cobra.Command {
	var lang, pos string
	cmd := &cobra.Command{
		Use:   "generate <lemma>",
		Short: "Print the paradigm of a lemma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.engine(lang)
			if err != nil {
				return err
			}
			defer e.Close()
			cells, err := e.Paradigm(args[0], pos)
			if err != nil {
				return err
			}
			if len(cells) == 0 {
				return fmt.Errorf("%s %s: nothing generated", args[0], pos)
			}
			for _, c := range cells {
				forms := make([]string, 0, len(c.Forms))
				for _, f := range c.Forms {
					forms = append(forms, f.Form)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Template, strings.Join(forms, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "sme", "Language code")
	cmd.Flags().StringVarP(&pos, "pos", "p", giellamorph.POSNoun, "Part of speech")
	return cmd
}

func coverageCmd(g *globalFlags) *cobra.Command {
	var (
		lang    string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "coverage <lemma-list>",
		Short: "Check which dictionary lemmas produce a paradigm",
		Long: `Read a tab separated lemma<TAB>pos list and report the lemmas for which
neither direct generation nor best-analysis recovery produces a paradigm.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			lemmas, err := giellamorph.ReadLemmaList(f)
			if err != nil {
				return err
			}

			e, err := g.engine(lang)
			if err != nil {
				return err
			}
			defer e.Close()
			report, err := giellamorph.CheckCoverage(cmd.Context(), e, lemmas, workers)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, lp := range report.Failed {
				fmt.Fprintf(w, "%s\t%s\n", lp.Lemma, lp.POS)
			}
			fmt.Fprintf(w, "%s: %d checked, %d not generated, %d not analysed\n",
				report.Lang, report.Total, report.NotGenerated, report.NotAnalysed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "sme", "Language code")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent lookups")
	return cmd
}

func corpusCmd(g *globalFlags) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "corpus [lookup-output]",
		Short: "Report analyses of corpus text the classification rules miss",
		Long: `Run every analysis of hfst-lookup output (stdin when no file is given)
through the lemmatiser. Prints each unclassifiable analysis once, then the
inventory of ending tags seen.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			e, err := g.engine(lang)
			if err != nil {
				return err
			}
			defer e.Close()
			report, err := giellamorph.CheckCorpus(e.Lemmatiser(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, u := range report.Unmodelled {
				fmt.Fprintf(w, "unmodelled\t%s\t%s\n", u.Analysis, u.EndingTags)
			}
			for _, tags := range report.EndingTags {
				fmt.Fprintf(w, "ending\t%s\n", tags)
			}
			fmt.Fprintf(w, "%d lines, %d checked, %d skipped, %d unmodelled\n",
				report.Lines, report.Checked, report.Skipped, len(report.Unmodelled))
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "sme", "Language code")
	return cmd
}

func importCmd() *cobra.Command {
	var store, direction string
	cmd := &cobra.Command{
		Use:   "import <lookup-output>",
		Short: "Load hfst-lookup output into a sqlite lookup store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := giellamorph.Direction(direction)
			if dir != giellamorph.Analysis && dir != giellamorph.Generation {
				return fmt.Errorf("direction must be %s or %s", giellamorph.Analysis, giellamorph.Generation)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := lookupstore.Open(store)
			if err != nil {
				return err
			}
			defer s.Close()
			n, err := s.Import(dir, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s inputs into %s\n", n, dir, store)
			return nil
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "SQLite store path")
	cmd.Flags().StringVarP(&direction, "direction", "d", string(giellamorph.Analysis), "analyse or generate")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}
