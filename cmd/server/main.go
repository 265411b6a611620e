// Command server exposes the giellamorph lemmatiser and paradigm generator
// as a JSON REST API.
//
// Endpoints:
//
//	GET /api/lemmatise?word=<wordform>[&lang=<code>]
//	GET /api/analyse?lang=<code>&word=<wordform>
//	GET /api/generate?lang=<code>&lemma=<lemma>&pos=<N|V|A|...>
//	GET /api/languages
//	GET /metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/satni-dict/giellamorph"

	// Register the sqlite backends via init()
	_ "github.com/satni-dict/giellamorph/lookupstore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		logLevel   string
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve lemmatisation and paradigm generation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, addr, logLevel)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
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

func run(ctx context.Context, configPath, addr, logLevel string) error {
	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	cfg := giellamorph.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = giellamorph.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger.Info("loading languages", "count", len(cfg.Languages), "backends", giellamorph.Backends())
	registry, err := giellamorph.LoadRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load languages: %w", err)
	}
	defer registry.Close()
	logger.Info("languages loaded", "languages", registry.Languages())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Reload {
		go func() {
			if err := registry.Watch(ctx, cfg); err != nil {
				logger.Error("watch failed", "error", err)
			}
		}()
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s := &server{registry: registry, metrics: newMetrics(promReg), logger: logger}
	mux := s.routes(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
