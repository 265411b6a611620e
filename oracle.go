package giellamorph

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Transducer is one direction of a finite-state transducer. Lookup returns
// every reading of input; an input without readings yields an empty slice.
type Transducer interface {
	Lookup(input string) ([]Reading, error)
}

// Oracle pairs the analyser and the generator of one language.
type Oracle struct {
	Analyser  Transducer
	Generator Transducer
}

// Analyse returns the usable analyses of a surface form.
func (o Oracle) Analyse(word string) ([]Reading, error) {
	return usableLookup(o.Analyser, word)
}

// Generate returns the usable surface forms of a tag string.
func (o Oracle) Generate(tagString string) ([]Reading, error) {
	return usableLookup(o.Generator, tagString)
}

func usableLookup(t Transducer, input string) ([]Reading, error) {
	if t == nil {
		return nil, nil
	}
	readings, err := t.Lookup(input)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", input, err)
	}
	out := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if !Usable(r.Form) {
			continue
		}
		out = append(out, Reading{Form: StripFlagDiacritics(r.Form), Weight: r.Weight})
	}
	return out, nil
}

// TableTransducer answers lookups from an in-memory table. It is filled
// from hfst-lookup output or programmatically and is safe for concurrent
// lookups once filled.
type TableTransducer struct {
	mu      sync.RWMutex
	entries map[string][]Reading
}

// NewTableTransducer returns an empty table.
func NewTableTransducer() *TableTransducer {
	return &TableTransducer{entries: make(map[string][]Reading)}
}

// Add appends a reading for input.
func (t *TableTransducer) Add(input, form string, weight float64) *TableTransducer {
	t.mu.Lock()
	t.entries[input] = append(t.entries[input], Reading{Form: form, Weight: weight})
	t.mu.Unlock()
	return t
}

// Lookup implements Transducer.
func (t *TableTransducer) Lookup(input string) ([]Reading, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	readings := t.entries[input]
	out := make([]Reading, len(readings))
	copy(out, readings)
	return out, nil
}

// Len returns the number of distinct inputs in the table.
func (t *TableTransducer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// LookupLine is one line of hfst-lookup output.
type LookupLine struct {
	Input string
	Reading
}

// ParseLookupLine parses "input<TAB>output[<TAB>weight]". Lines with fewer
// than two fields are rejected.
func ParseLookupLine(line string) (LookupLine, bool) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < 2 || fields[0] == "" {
		return LookupLine{}, false
	}
	l := LookupLine{Input: fields[0], Reading: Reading{Form: fields[1]}}
	if len(fields) > 2 {
		l.Weight = parseWeight(fields[2])
	}
	return l, true
}

// parseWeight accepts both "1.5" and the comma decimal some hfst builds print.
func parseWeight(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.Inf(1)
	}
	return w
}

// ScanLookupOutput calls fn for every parseable line of hfst-lookup output.
func ScanLookupOutput(r io.Reader, fn func(LookupLine) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		l, ok := ParseLookupLine(sc.Text())
		if !ok {
			continue
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ParseTable builds a TableTransducer from hfst-lookup output.
func ParseTable(r io.Reader) (*TableTransducer, error) {
	t := NewTableTransducer()
	err := ScanLookupOutput(r, func(l LookupLine) error {
		t.Add(l.Input, l.Form, l.Weight)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTable reads a lookup table file.
func LoadTable(path string) (*TableTransducer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError("open lookup table", path, err)
	}
	defer f.Close()

	t, err := ParseTable(f)
	if err != nil {
		return nil, sourceError("read lookup table", path, err)
	}
	return t, nil
}
