package giellamorph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClasses = TagClasses{
	"Number": {"Sg", "Pl"},
	"Case":   {"Nom", "Gen", "Ess"},
	"Px":     {"PxSg1", "PxSg2"},
}

func TestParseGrammar(t *testing.T) {
	rules, err := ParseGrammar(strings.NewReader("% grammar\nN+Number+Case\n\nV+Inf\nA = x\n"))
	require.NoError(t, err)
	assert.Equal(t, []GrammarRule{
		{POS: "N", Classes: []string{"Number", "Case"}},
		{POS: "V", Classes: []string{"Inf"}},
	}, rules)
}

func TestBuildTemplatesProduct(t *testing.T) {
	templates := BuildTemplates([]GrammarRule{ParseGrammarRule("N+Number+Case")}, testClasses)

	assert.Equal(t, []string{
		"+N+Sg+Nom", "+N+Sg+Gen", "+N+Sg+Ess",
		"+N+Pl+Nom", "+N+Pl+Gen", "+N+Pl+Ess",
	}, templates["N"])
}

func TestBuildTemplatesOptionalClass(t *testing.T) {
	templates := BuildTemplates([]GrammarRule{ParseGrammarRule("N+Number+Px?")}, testClasses)

	// the branch without the optional class comes first
	assert.Equal(t, []string{
		"+N+Sg", "+N+Sg+PxSg1", "+N+Sg+PxSg2",
		"+N+Pl", "+N+Pl+PxSg1", "+N+Pl+PxSg2",
	}, templates["N"])

	without := BuildTemplates([]GrammarRule{ParseGrammarRule("N+Number")}, testClasses)
	with := BuildTemplates([]GrammarRule{ParseGrammarRule("N+Number+Px")}, testClasses)
	assert.Len(t, templates["N"], len(without["N"])+len(with["N"]))
}

func TestBuildTemplatesLiteralFallback(t *testing.T) {
	templates := BuildTemplates([]GrammarRule{
		ParseGrammarRule("V+Inf"),
		ParseGrammarRule("V+Ind+Prs+Number"),
		ParseGrammarRule("Adv"),
	}, testClasses)

	assert.Equal(t, []string{"+V+Inf", "+V+Ind+Prs+Sg", "+V+Ind+Prs+Pl"}, templates["V"])
	assert.Equal(t, []string{"+Adv"}, templates["Adv"])
	assert.Equal(t, []string{"Adv", "V"}, templates.POS())
}

func TestBuildTemplatesFromFiles(t *testing.T) {
	dir := t.TempDir()
	grammar := filepath.Join(dir, "paradigm_full.sme.txt")
	tags := filepath.Join(dir, "korpustags.sme.txt")
	require.NoError(t, os.WriteFile(grammar, []byte("N+Number+Case\n"), 0o644))
	require.NoError(t, os.WriteFile(tags, []byte(korpustags), 0o644))

	templates, err := BuildTemplatesFromFiles(grammar, tags)
	require.NoError(t, err)
	assert.Len(t, templates["N"], 6)

	_, err = BuildTemplatesFromFiles(filepath.Join(dir, "missing"), tags)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestTemplatesSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sme.json")
	templates := BuildTemplates([]GrammarRule{ParseGrammarRule("N+Number+Case")}, testClasses)
	require.NoError(t, templates.Save(path))

	loaded, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, templates, loaded)

	_, err = LoadTemplates(filepath.Join(t.TempDir(), "none.json"))
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestLoadTemplatesWithoutLeadingSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sme.json")
	doc := `{"N": ["N+Sg+Nom", "+N+Sg+Gen"], "V": ["V+Inf"]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	loaded, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, Templates{
		"N": {"+N+Sg+Nom", "+N+Sg+Gen"},
		"V": {"+V+Inf"},
	}, loaded)
}

func TestGrammarFileName(t *testing.T) {
	assert.Equal(t, "paradigm_standard.smj.txt", GrammarFileName("smj"))
	assert.Equal(t, "paradigm_full.sme.txt", GrammarFileName("sme"))
}

func TestDiscoverSources(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"lang-sme/test/data/korpustags.sme.txt",
		"lang-smj/test/data/korpustags.smj.txt",
		"lang-sma/test/data/korpustags.sme.txt",
		"lang-fin/test/korpustags.fin.txt",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(korpustags), 0o644))
	}

	sources, err := DiscoverSources(root)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "sme", sources[0].Lang)
	assert.Equal(t, filepath.Join(root, "lang-sme", "test", "data", "paradigm_full.sme.txt"), sources[0].Grammar)
	assert.Equal(t, filepath.Join(root, "lang-sme", "test", "data", "korpustags.sme.txt"), sources[0].Tags)
	assert.Equal(t, "smj", sources[1].Lang)
	assert.Equal(t, filepath.Join(root, "lang-smj", "test", "data", "paradigm_standard.smj.txt"), sources[1].Grammar)
}
