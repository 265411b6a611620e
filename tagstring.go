package giellamorph

import (
	"regexp"
	"strings"
)

// Tag-string markers shared by the analyser and the generator of every
// Giella transducer.
const (
	// TagSeparator separates the stem and the grammatical tags.
	TagSeparator = "+"
	// CompoundBoundary separates the members of a compound analysis,
	// e.g. gielda+N+Cmp/SgNom+Cmp#viessu+N+Sg+Nom.
	CompoundBoundary = "+Cmp#"
	// DerivationBoundary introduces a derivation tag such as +Der/NomAct.
	DerivationBoundary = "+Der/"

	unresolvedMarker = "?"
	errorTag         = "+Err"
)

// flagDiacritic matches hfst flag diacritics like @P.Px.add@.
var flagDiacritic = regexp.MustCompile(`@[^@]+@`)

// StripFlagDiacritics removes all @...@ flag diacritics from s.
func StripFlagDiacritics(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	return flagDiacritic.ReplaceAllString(s, "")
}

// Usable reports whether an oracle result may be processed further:
// results carrying the unresolved marker or an error tag are discarded.
func Usable(s string) bool {
	return !strings.Contains(s, unresolvedMarker) && !strings.Contains(s, errorTag)
}

// Stem returns the first token of a tag string.
func Stem(tagString string) string {
	if i := strings.Index(tagString, TagSeparator); i >= 0 {
		return tagString[:i]
	}
	return tagString
}

// lastTagsCut returns the index where the ending tags of s begin: right
// after the last derivation tag if there is one, otherwise at the first
// tag separator. ok is false when s carries no tags at all.
func lastTagsCut(s string) (int, bool) {
	if k := strings.LastIndex(s, DerivationBoundary); k >= 0 {
		if j := strings.Index(s[k+1:], TagSeparator); j >= 0 {
			return k + 1 + j, true
		}
		// the derivation tag is itself the last tag
		return k, true
	}
	i := strings.Index(s, TagSeparator)
	return i, i >= 0
}

// EndingTags returns the inflectional tail of s: everything after the
// last derivation tag, or everything after the stem when s is not derived.
//
//	EndingTags("guolli+N+Sg+Gen")                    == "+N+Sg+Gen"
//	EndingTags("bargat+V+TV+Der/NomAct+N+Sg+Nom")    == "+N+Sg+Nom"
func EndingTags(s string) string {
	cut, ok := lastTagsCut(s)
	if !ok {
		return ""
	}
	return s[cut:]
}

// RemoveLastTags is the counterpart of EndingTags: it returns the stem and
// every tag that precedes the ending tags.
func RemoveLastTags(s string) string {
	cut, ok := lastTagsCut(s)
	if !ok {
		return s
	}
	return s[:cut]
}

// CompoundMembers splits an analysis on every compound boundary.
func CompoundMembers(s string) []string {
	return strings.Split(s, CompoundBoundary)
}

// IsCompound reports whether s contains a compound boundary.
func IsCompound(s string) bool {
	return strings.Contains(s, CompoundBoundary)
}

// splitLastCompound splits s on its last compound boundary into the
// leading members and the tail analysis.
func splitLastCompound(s string) ([]string, string) {
	i := strings.LastIndex(s, CompoundBoundary)
	if i < 0 {
		return nil, s
	}
	return CompoundMembers(s[:i]), s[i+len(CompoundBoundary):]
}

// lastTag returns the last tag of s without its separator.
func lastTag(s string) string {
	i := strings.LastIndex(s, TagSeparator)
	if i < 0 {
		return ""
	}
	return s[i+1:]
}
