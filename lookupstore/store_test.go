package lookupstore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satni-dict/giellamorph"
)

const lookupOutput = `guoli	guolli+N+Sg+Gen	0
guoli	guolli+N+Sg+Acc	0,5
viesuid	viessu+N+Pl+Acc	0
dovdameahttun	dovdameahttun+?	inf

guoli	guolli+N+Sem/Ani+Sg+Gen	1
`

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "lookups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImport(t *testing.T) {
	s := openStore(t)

	n, err := s.Import(giellamorph.Analysis, strings.NewReader(lookupOutput))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, found, err := s.Get(giellamorph.Analysis, "guoli")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []giellamorph.Reading{
		{Form: "guolli+N+Sg+Gen"},
		{Form: "guolli+N+Sg+Acc", Weight: 0.5},
		{Form: "guolli+N+Sem/Ani+Sg+Gen", Weight: 1},
	}, got)

	_, found, err = s.Get(giellamorph.Generation, "guoli")
	require.NoError(t, err)
	assert.False(t, found)

	count, err := s.Count(giellamorph.Analysis)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPutReplaces(t *testing.T) {
	s := openStore(t)
	dir := giellamorph.Generation

	require.NoError(t, s.Put(dir, "guolli+N+Sg+Nom", []giellamorph.Reading{{Form: "guolli"}, {Form: "guollie"}}))
	require.NoError(t, s.Put(dir, "guolli+N+Sg+Nom", []giellamorph.Reading{{Form: "guolli"}}))

	got, found, err := s.Get(dir, "guolli+N+Sg+Nom")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []giellamorph.Reading{{Form: "guolli"}}, got)

	// an empty result is remembered
	require.NoError(t, s.Put(dir, "guolli+N+Sg+Nom", nil))
	got, found, err = s.Get(dir, "guolli+N+Sg+Nom")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestStoreTransducer(t *testing.T) {
	s := openStore(t)
	_, err := s.Import(giellamorph.Analysis, strings.NewReader(lookupOutput))
	require.NoError(t, err)

	o := giellamorph.Oracle{Analyser: s.Transducer(giellamorph.Analysis)}
	got, err := o.Analyse("dovdameahttun")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = o.Analyse("viesuid")
	require.NoError(t, err)
	assert.Equal(t, []giellamorph.Reading{{Form: "viessu+N+Pl+Acc"}}, got)

	got, err = o.Analyse("missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

type countingTransducer struct {
	table *giellamorph.TableTransducer
	calls int
}

func (c *countingTransducer) Lookup(input string) ([]giellamorph.Reading, error) {
	c.calls++
	return c.table.Lookup(input)
}

func TestRecorder(t *testing.T) {
	s := openStore(t)
	next := &countingTransducer{table: giellamorph.NewTableTransducer().Add("guolli+N+Sg+Nom", "guolli", 0)}
	rec := s.Recorder(giellamorph.Generation, next)

	for range 3 {
		got, err := rec.Lookup("guolli+N+Sg+Nom")
		require.NoError(t, err)
		assert.Equal(t, []giellamorph.Reading{{Form: "guolli"}}, got)
	}
	for range 2 {
		got, err := rec.Lookup("nothing+N+Sg+Nom")
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 2, next.calls)

	// recorded lookups are served by the store alone
	got, err := s.Transducer(giellamorph.Generation).Lookup("guolli+N+Sg+Nom")
	require.NoError(t, err)
	assert.Equal(t, []giellamorph.Reading{{Form: "guolli"}}, got)
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "sme.db")
	s, err := Open(store)
	require.NoError(t, err)
	_, err = s.Import(giellamorph.Analysis, strings.NewReader("cars\tcar+N+Pl+Nom\t0\n"))
	require.NoError(t, err)
	_, err = s.Import(giellamorph.Generation, strings.NewReader("car+N+Sg+Nom\tcar\t0\n"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Contains(t, giellamorph.Backends(), BackendSQLite)
	assert.Contains(t, giellamorph.Backends(), BackendHFSTSQLite)

	cfg := giellamorph.DefaultConfig()
	cfg.TemplateDir = ""
	cfg.Languages = []giellamorph.LanguageConfig{{Code: "eng", Backend: BackendSQLite, Store: store}}
	e, err := giellamorph.OpenEngine(cfg, "eng", nil)
	require.NoError(t, err)
	defer e.Close()

	lemmas, err := e.Lemmatise("cars")
	require.NoError(t, err)
	assert.Equal(t, []string{"car"}, lemmas)

	cfg.Languages[0].Store = ""
	_, err = giellamorph.OpenEngine(cfg, "eng", nil)
	assert.Error(t, err)
}
