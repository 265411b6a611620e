package giellamorph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLemmaList(t *testing.T) {
	lemmas, err := ReadLemmaList(strings.NewReader("# lemma\tpos\nguolli\tN\n\nbargat\tV\nbroken\n viessu \t N \n"))
	require.NoError(t, err)
	assert.Equal(t, []LemmaPOS{
		{Lemma: "guolli", POS: "N"},
		{Lemma: "bargat", POS: "V"},
		{Lemma: "viessu", POS: "N"},
	}, lemmas)
}

func coverageEngine(t *testing.T) *Engine {
	t.Helper()
	oracle := smeOracle(t)
	oracle.Analyser.(*TableTransducer).Add("guolli1", "guolli+N+Sg+Nom", 0)
	return NewEngine("sme", oracle, nounTemplates, smeRules(t))
}

func TestCheckCoverage(t *testing.T) {
	e := coverageEngine(t)
	lemmas := []LemmaPOS{
		{Lemma: "guolli", POS: POSNoun},
		{Lemma: "guolli1", POS: POSNoun},
		{Lemma: "viesuid", POS: POSNoun},
		{Lemma: "nothing", POS: POSNoun},
		{Lemma: "viessu", POS: POSProper},
		{Lemma: "bargat", POS: POSVerb},
		{Lemma: "", POS: POSNoun},
	}

	report, err := CheckCoverage(context.Background(), e, lemmas, 3)
	require.NoError(t, err)
	assert.Equal(t, "sme", report.Lang)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 2, report.NotGenerated)
	assert.Equal(t, 1, report.NotAnalysed)
	assert.Equal(t, []LemmaPOS{
		{Lemma: "nothing", POS: POSNoun},
		{Lemma: "viesuid", POS: POSNoun},
	}, report.Failed)
}

func TestCheckCoverageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CheckCoverage(ctx, coverageEngine(t), []LemmaPOS{{Lemma: "guolli", POS: POSNoun}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckCoverageError(t *testing.T) {
	e := NewEngine("sme", Oracle{Generator: &countingTransducer{err: errBroken}}, nounTemplates, nil)
	_, err := CheckCoverage(context.Background(), e, []LemmaPOS{{Lemma: "guolli", POS: POSNoun}}, 2)
	assert.ErrorIs(t, err, errBroken)
}
