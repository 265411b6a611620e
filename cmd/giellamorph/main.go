// Command giellamorph builds paradigm templates and runs the lemmatiser,
// the paradigm generator and the coverage checks from the command line.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satni-dict/giellamorph"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "giellamorph",
		Short:         "Sámi and Finnic lemmatisation and paradigm generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(g.logLevel))
		},
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		taglistCmd(g),
		lemmatiseCmd(g),
		analyseCmd(g),
		generateCmd(g),
		coverageCmd(g),
		corpusCmd(g),
		importCmd(),
	)
	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (g *globalFlags) config() (*giellamorph.Config, error) {
	if g.configPath == "" {
		return giellamorph.DefaultConfig(), nil
	}
	return giellamorph.LoadConfig(g.configPath)
}

func (g *globalFlags) engine(lang string) (*giellamorph.Engine, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	return giellamorph.OpenEngine(cfg, lang, slog.Default())
}

// words returns args, or the lines of stdin when there are none.
func words(in io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}
