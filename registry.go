package giellamorph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Registry maps language codes to engines. Engines themselves never
// change; a reload swaps in a freshly built engine and the replaced one
// stays open until every caller holding it has released it.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	logger  *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{engines: make(map[string]*Engine), logger: logger}
}

// LoadRegistry opens every configured language. Construction stops at the
// first language that fails to load.
func LoadRegistry(cfg *Config, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, l := range cfg.Languages {
		e, err := OpenEngine(cfg, l.Code, r.logger)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.Swap(e)
	}
	return r, nil
}

// Engine returns the engine of lang with a hold on it. The caller calls
// Release once done with it.
func (r *Registry) Engine(lang string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[lang]
	if !ok {
		return nil, false
	}
	return e.Retain(), true
}

// Has reports whether lang is registered.
func (r *Registry) Has(lang string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.engines[lang]
	return ok
}

// Languages returns the registered language codes, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.engines))
	for lang := range r.engines {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Swap registers e under its language and returns the engine it replaced.
// The registry takes over the caller's hold on e and hands its hold on the
// replaced engine back to the caller.
func (r *Registry) Swap(e *Engine) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.engines[e.Lang]
	r.engines[e.Lang] = e
	return old
}

// Reload rebuilds lang from cfg and swaps it in. The previous engine keeps
// serving if the rebuild fails.
func (r *Registry) Reload(cfg *Config, lang string) error {
	e, err := OpenEngine(cfg, lang, r.logger)
	if err != nil {
		return err
	}
	if old := r.Swap(e); old != nil {
		if err := old.Release(); err != nil {
			r.logger.Warn("close replaced engine", "lang", lang, "error", err)
		}
	}
	return nil
}

// Close releases the registry's hold on every engine.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for lang, e := range r.engines {
		if err := e.Release(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", lang, err)
		}
	}
	r.engines = make(map[string]*Engine)
	return firstErr
}

// Watch reloads a language whenever one of its template, grammar, tag or
// rule files is written. It blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, cfg *Config) error {
	owners := make(map[string][]string)
	for _, l := range cfg.Languages {
		lc, _ := cfg.Language(l.Code)
		for _, f := range lc.Files() {
			abs, err := filepath.Abs(f)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", f, err)
			}
			owners[abs] = append(owners[abs], l.Code)
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]bool)
	for f := range owners {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			r.logger.Warn("watch directory", "path", d, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			for _, lang := range owners[filepath.Clean(ev.Name)] {
				r.logger.Info("reloading language", "lang", lang, "path", ev.Name)
				if err := r.Reload(cfg, lang); err != nil {
					r.logger.Error("reload failed", "lang", lang, "error", err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", "error", err)
		}
	}
}
