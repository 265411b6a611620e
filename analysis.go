package giellamorph

// Parts of speech as they appear as the first tag of Giella analyses and
// as the first token of paradigm grammar rules.
const (
	POSNoun      = "N"
	POSVerb      = "V"
	POSAdjective = "A"
	POSAdverb    = "Adv"
	POSNumeral   = "Num"
	POSProper    = "Prop"
)

// Reading is one result of a transducer lookup.
type Reading struct {
	// Form is a tag string in the analysis direction and a surface form
	// in the generation direction.
	Form string `json:"form"`
	// Weight orders ambiguous readings; lower is more likely.
	Weight float64 `json:"weight"`
}

// ParadigmCell holds the wordforms generated for one paradigm template.
type ParadigmCell struct {
	// Template is the tag suffix, e.g. "+N+Sg+Gen".
	Template string `json:"paradigm_template"`
	// Forms are the generated wordforms in oracle order.
	Forms []Reading `json:"analyses"`
}

// LemmaPOS is a dictionary lemma together with its part of speech.
type LemmaPOS struct {
	Lemma string
	POS   string
}
