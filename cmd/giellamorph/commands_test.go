package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satni-dict/giellamorph"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// tableConfig writes a sme config served from lookup tables.
func tableConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	templates := filepath.Join(dir, "sme.json")
	require.NoError(t, giellamorph.Templates{giellamorph.POSNoun: {"+N+Sg+Nom", "+N+Sg+Gen"}}.Save(templates))

	analyser := writeFile(t, dir, "analyser.tsv", "guoli\tguolli+N+Sg+Gen\t0\nxyz\txyz+N+Foo\t0\n")
	generator := writeFile(t, dir, "generator.tsv", "guolli+N+Sg+Nom\tguolli\t0\nguolli+N+Sg+Gen\tguoli\t0\n")
	return writeFile(t, dir, "giellamorph.yaml", `
cache_size: 0
languages:
  - code: sme
    backend: table
    analyser: `+analyser+`
    generator: `+generator+`
    templates: `+templates+`
`)
}

func TestTaglistCommand(t *testing.T) {
	dir := t.TempDir()
	grammar := writeFile(t, dir, "paradigm_full.sme.txt", "N+Number+Case\n")
	tags := writeFile(t, dir, "korpustags.sme.txt", "#Number\nSg\nPl\n#Case\nNom\nGen\nEss\n")
	out := filepath.Join(dir, "out", "sme.json")

	stdout, err := execute(t, "", "taglist", "--gtlangs", "", "--grammar", grammar, "--tags", tags, "--out", out)
	require.NoError(t, err)
	assert.Equal(t, out+": N=6\n", stdout)

	templates, err := giellamorph.LoadTemplates(out)
	require.NoError(t, err)
	assert.Len(t, templates[giellamorph.POSNoun], 6)

	_, err = execute(t, "", "taglist", "--gtlangs", "", "--grammar", grammar)
	assert.Error(t, err)
}

func TestTaglistCommandGTLangs(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "lang-sme", "test", "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	writeFile(t, data, "paradigm_full.sme.txt", "V+Inf\n")
	writeFile(t, data, "korpustags.sme.txt", "#Number\nSg\n")
	outDir := filepath.Join(root, "templates")

	stdout, err := execute(t, "", "taglist", "--gtlangs", root, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "sme.json")+": V=1\n", stdout)
}

func TestLemmatiseCommand(t *testing.T) {
	cfg := tableConfig(t)

	stdout, err := execute(t, "", "-c", cfg, "lemmatise", "-l", "sme", "guoli")
	require.NoError(t, err)
	assert.Equal(t, "guoli\tguolli\n", stdout)

	stdout, err = execute(t, "guoli\n\nguoli\n", "-c", cfg, "lemmatise", "-l", "sme")
	require.NoError(t, err)
	assert.Equal(t, "guoli\tguolli\nguoli\tguolli\n", stdout)

	_, err = execute(t, "", "-c", cfg, "lemmatise", "-l", "sme", "xyz")
	var unmodelled *giellamorph.UnmodelledPatternError
	assert.ErrorAs(t, err, &unmodelled)
}

func TestAnalyseCommand(t *testing.T) {
	cfg := tableConfig(t)

	stdout, err := execute(t, "", "-c", cfg, "analyse", "-l", "sme", "guoli", "nothing")
	require.NoError(t, err)
	assert.Equal(t, "guoli\tguolli+N+Sg+Gen\t0\n\n\n", stdout)

	_, err = execute(t, "", "-c", cfg, "analyse", "-l", "fin", "guoli")
	assert.Error(t, err)
}

func TestCoverageCommand(t *testing.T) {
	cfg := tableConfig(t)
	lemmas := writeFile(t, t.TempDir(), "lemmas.tsv", "# lemma\tpos\nguolli\tN\nnothing\tN\nguolli\tV\n")

	stdout, err := execute(t, "", "-c", cfg, "coverage", "-l", "sme", "-w", "2", lemmas)
	require.NoError(t, err)
	assert.Equal(t, "nothing\tN\nsme: 2 checked, 1 not generated, 1 not analysed\n", stdout)

	_, err = execute(t, "", "-c", cfg, "coverage", "-l", "sme", filepath.Join(t.TempDir(), "none.tsv"))
	assert.Error(t, err)
}

func TestGenerateCommand(t *testing.T) {
	cfg := tableConfig(t)

	stdout, err := execute(t, "", "-c", cfg, "generate", "-l", "sme", "-p", "N", "guolli")
	require.NoError(t, err)
	assert.Equal(t, "+N+Sg+Nom\tguolli\n+N+Sg+Gen\tguoli\n", stdout)

	_, err = execute(t, "", "-c", cfg, "generate", "-l", "sme", "-p", "N", "nothing")
	assert.Error(t, err)
}

func TestCorpusCommand(t *testing.T) {
	cfg := tableConfig(t)

	stdout, err := execute(t, "guoli\tguolli+N+Sg+Gen\t0\nxyz\txyz+N+Foo\t0\n", "-c", cfg, "corpus", "-l", "sme")
	require.NoError(t, err)
	assert.Contains(t, stdout, "unmodelled\txyz+N+Foo\t+N+Foo\n")
	assert.Contains(t, stdout, "2 lines, 2 checked, 0 skipped, 1 unmodelled\n")
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "analyses.tsv", "guoli\tguolli+N+Sg+Gen\t0\nguoli\tguolli+N+Sg+Acc\t0\n")
	store := filepath.Join(dir, "sme.db")

	stdout, err := execute(t, "", "import", "--store", store, input)
	require.NoError(t, err)
	assert.Equal(t, "imported 1 analyse inputs into "+store+"\n", stdout)

	_, err = execute(t, "", "import", "--store", store, "-d", "sideways", input)
	assert.Error(t, err)
}
