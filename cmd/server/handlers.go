package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/satni-dict/giellamorph"
)

// ---- JSON response types ------------------------------------------------

type lemmatiseResponse struct {
	Word   string              `json:"word"`
	Lemmas map[string][]string `json:"lemmas"`
}

type analyseResponse struct {
	Lang     string                `json:"lang"`
	Word     string                `json:"word"`
	Analyses []giellamorph.Reading `json:"analyses"`
}

type generateResponse struct {
	Lang     string                     `json:"lang"`
	Lemma    string                     `json:"lemma"`
	POS      string                     `json:"pos"`
	Paradigm []giellamorph.ParadigmCell `json:"paradigm"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Analysis   string `json:"analysis,omitempty"`
	EndingTags string `json:"ending_tags,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// ---- metrics ------------------------------------------------------------

type metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	unmodelled *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giellamorph_requests_total",
			Help: "API requests by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giellamorph_request_duration_seconds",
			Help:    "API request latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		unmodelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giellamorph_unmodelled_patterns_total",
			Help: "Analyses the classification rules could not handle.",
		}, []string{"lang"}),
	}
	reg.MustRegister(m.requests, m.duration, m.unmodelled)
	return m
}

// ---- helpers ------------------------------------------------------------

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument tags every request with an id, logs it and records metrics.
func (s *server) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		elapsed := time.Since(start)

		s.metrics.requests.WithLabelValues(endpoint, fmt.Sprint(rec.status)).Inc()
		s.metrics.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		s.logger.Debug("request",
			"id", id,
			"endpoint", endpoint,
			"query", r.URL.RawQuery,
			"status", rec.status,
			"duration", elapsed)
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode error", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg, RequestID: requestID(r.Context())})
}

// writeLookupError maps engine errors to responses. Unmodelled patterns
// are rule table gaps and are reported as 422.
func (s *server) writeLookupError(w http.ResponseWriter, r *http.Request, lang string, err error) {
	var unmodelled *giellamorph.UnmodelledPatternError
	if errors.As(err, &unmodelled) {
		s.metrics.unmodelled.WithLabelValues(lang).Inc()
		s.logger.Warn("unmodelled pattern",
			"lang", lang,
			"analysis", unmodelled.Analysis,
			"ending_tags", unmodelled.EndingTags)
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      "unmodelled pattern",
			Analysis:   unmodelled.Analysis,
			EndingTags: unmodelled.EndingTags,
			RequestID:  requestID(r.Context()),
		})
		return
	}
	s.logger.Error("lookup failed", "lang", lang, "error", err, "id", requestID(r.Context()))
	s.writeError(w, r, http.StatusInternalServerError, "lookup failed")
}

// engine returns the engine named by the lang parameter. The caller
// releases it.
func (s *server) engine(w http.ResponseWriter, r *http.Request) (*giellamorph.Engine, bool) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		s.writeError(w, r, http.StatusBadRequest, "missing 'lang' query parameter")
		return nil, false
	}
	e, ok := s.registry.Engine(lang)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Sprintf("language %q not served", lang))
		return nil, false
	}
	return e, true
}

// ---- handlers -----------------------------------------------------------

type server struct {
	registry *giellamorph.Registry
	metrics  *metrics
	logger   *slog.Logger
}

func (s *server) routes(metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/lemmatise", s.instrument("lemmatise", s.handleLemmatise))
	mux.HandleFunc("/api/analyse", s.instrument("analyse", s.handleAnalyse))
	mux.HandleFunc("/api/generate", s.instrument("generate", s.handleGenerate))
	mux.HandleFunc("/api/languages", s.instrument("languages", s.handleLanguages))
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	return mux
}

// handleLemmatise returns the citation forms of word per language. Without
// lang every served language is asked; languages without a citation form
// are left out.
func (s *server) handleLemmatise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "GET required")
		return
	}
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		s.writeError(w, r, http.StatusBadRequest, "missing 'word' query parameter")
		return
	}

	langs := s.registry.Languages()
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if !s.registry.Has(lang) {
			s.writeError(w, r, http.StatusNotFound, fmt.Sprintf("language %q not served", lang))
			return
		}
		langs = []string{lang}
	}

	resp := lemmatiseResponse{Word: word, Lemmas: make(map[string][]string)}
	for _, lang := range langs {
		lemmas, err := s.lemmatise(lang, word)
		if err != nil {
			s.writeLookupError(w, r, lang, err)
			return
		}
		if len(lemmas) > 0 {
			resp.Lemmas[lang] = lemmas
		}
	}
	status := http.StatusOK
	if len(resp.Lemmas) == 0 {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, resp)
}

func (s *server) lemmatise(lang, word string) ([]string, error) {
	e, ok := s.registry.Engine(lang)
	if !ok {
		return nil, nil
	}
	defer e.Release()
	return e.Lemmatise(word)
}

func (s *server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "GET required")
		return
	}
	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	defer e.Release()
	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		s.writeError(w, r, http.StatusBadRequest, "missing 'word' query parameter")
		return
	}
	analyses, err := e.Analyse(word)
	if err != nil {
		s.writeLookupError(w, r, e.Lang, err)
		return
	}
	status := http.StatusOK
	if len(analyses) == 0 {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, analyseResponse{Lang: e.Lang, Word: word, Analyses: analyses})
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "GET required")
		return
	}
	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	defer e.Release()
	q := r.URL.Query()
	lemma, pos := strings.TrimSpace(q.Get("lemma")), q.Get("pos")
	if lemma == "" || pos == "" {
		s.writeError(w, r, http.StatusBadRequest, "missing 'lemma' or 'pos' query parameter")
		return
	}
	if len(e.Generator().Templates(pos)) == 0 {
		s.writeError(w, r, http.StatusNotFound, fmt.Sprintf("no paradigm templates for %s %s", e.Lang, pos))
		return
	}
	cells, err := e.Paradigm(lemma, pos)
	if err != nil {
		s.writeLookupError(w, r, e.Lang, err)
		return
	}
	status := http.StatusOK
	if len(cells) == 0 {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, generateResponse{Lang: e.Lang, Lemma: lemma, POS: pos, Paradigm: cells})
}

func (s *server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.writeJSON(w, http.StatusOK, languagesResponse{Languages: s.registry.Languages()})
}
