package giellamorph

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// smeAnalyses is a small North Sámi analyser table in hfst-lookup form.
const smeAnalyses = `viesuid	viessu+N+Pl+Acc	0
gielddaviesus	gielda+N+Cmp/SgGen+Cmp#viessu+N+Sg+Loc	0
guolli	guolli+N+Sg+Nom	0
guoli	guolli+N+Sg+Gen	0
guoli	guolli+N+Sg+Acc	0
guoli	guolli+N+Sem/Ani+Sg+Gen+PxSg1	1,5
ja	ja+CC	0
buoret	buorre+A+Der/Comp+A+Pl+Nom	0
bargan	bargat+V+TV+PrfPrc	0
eai	ii+V+IV+Neg+Ind+Prs+Pl3	0
gávpogis	gávpot+N+Prop+Sem/Plc+Sg+Loc	0
dovdameahttun	dovdameahttun+?	inf
xyz	xyz+N+Foo	0
`

// smeGenerations is the matching generator table.
const smeGenerations = `viessu+N+Sg+Nom	viessu	0
gielda+N+Sg+Gen	gieldda	0
guolli+N+Sg+Nom	guolli	0
guolli+N+Sg+Gen	guoli	0
buorre+A+Sg+Nom	buorre	0
bargat+V+Inf	bargat	0
gávpot+N+Prop+Sg+Nom	gávpot	0
`

func smeOracle(t *testing.T) Oracle {
	t.Helper()
	an, err := ParseTable(strings.NewReader(smeAnalyses))
	require.NoError(t, err)
	gen, err := ParseTable(strings.NewReader(smeGenerations))
	require.NoError(t, err)
	return Oracle{Analyser: an, Generator: gen}
}

func smeRules(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := BuiltinRuleSet("sme")
	require.NoError(t, err)
	return rs
}

// countingTransducer counts lookups and optionally fails them.
type countingTransducer struct {
	next  Transducer
	calls int
	err   error
}

func (c *countingTransducer) Lookup(input string) ([]Reading, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.next.Lookup(input)
}

var errBroken = errors.New("transducer broken")
