package giellamorph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// optionalMarker marks a grammar class that may be left out of a cell.
const optionalMarker = "?"

// GrammarRule is one line of a paradigm grammar, e.g. N+Number+Case+Px?.
type GrammarRule struct {
	POS     string
	Classes []string
}

// Templates maps a part of speech to its paradigm templates in grammar
// expansion order.
type Templates map[string][]string

// ParseGrammarRule splits a grammar line into its part of speech and classes.
func ParseGrammarRule(line string) GrammarRule {
	parts := strings.Split(strings.TrimSpace(line), TagSeparator)
	return GrammarRule{POS: parts[0], Classes: parts[1:]}
}

// ParseGrammar reads paradigm grammar rules, one per valid line.
func ParseGrammar(r io.Reader) ([]GrammarRule, error) {
	var rules []GrammarRule
	err := scanTagLines(r, func(line string) {
		rules = append(rules, ParseGrammarRule(line))
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadGrammar reads the paradigm grammar file at path.
func LoadGrammar(path string) ([]GrammarRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError("open grammar", path, err)
	}
	defer f.Close()

	rules, err := ParseGrammar(f)
	if err != nil {
		return nil, sourceError("read grammar", path, err)
	}
	return rules, nil
}

// BuildTemplates expands every grammar rule into concrete paradigm
// templates. Templates of rules sharing a part of speech are concatenated
// in rule order.
func BuildTemplates(rules []GrammarRule, classes TagClasses) Templates {
	templates := make(Templates)
	for _, rule := range rules {
		var out []string
		expandRule(TagSeparator+rule.POS, rule.Classes, classes, &out)
		templates[rule.POS] = append(templates[rule.POS], out...)
	}
	return templates
}

// expandRule walks the class list depth first. An optional class first
// contributes the branch without it. A class missing from the catalog is
// used as a literal tag.
func expandRule(acc string, rest []string, classes TagClasses, out *[]string) {
	if len(rest) == 0 {
		*out = append(*out, acc)
		return
	}
	class, rest := rest[0], rest[1:]
	if strings.Contains(class, optionalMarker) {
		expandRule(acc, rest, classes, out)
	}
	class = strings.ReplaceAll(class, optionalMarker, "")

	tags := classes[class]
	if len(tags) == 0 {
		expandRule(acc+TagSeparator+class, rest, classes, out)
		return
	}
	for _, tag := range tags {
		expandRule(acc+TagSeparator+tag, rest, classes, out)
	}
}

// BuildTemplatesFromFiles loads a grammar and a tag definition file and
// expands them.
func BuildTemplatesFromFiles(grammarPath, tagsPath string) (Templates, error) {
	rules, err := LoadGrammar(grammarPath)
	if err != nil {
		return nil, err
	}
	classes, err := LoadTagClasses(tagsPath)
	if err != nil {
		return nil, err
	}
	return BuildTemplates(rules, classes), nil
}

// POS returns the parts of speech that have templates, sorted.
func (t Templates) POS() []string {
	out := make([]string, 0, len(t))
	for pos := range t {
		out = append(out, pos)
	}
	sort.Strings(out)
	return out
}

// Save writes the templates as indented JSON to path.
func (t Templates) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal templates: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write templates: %w", err)
	}
	return nil
}

// LoadTemplates reads templates previously written by Save. Templates
// stored without their leading separator (N+Sg+Nom) get it back, so that
// stem+template stays a valid analysis.
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sourceError("read templates", path, err)
	}
	var t Templates
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	for _, list := range t {
		for i, tmpl := range list {
			if tmpl != "" && !strings.HasPrefix(tmpl, TagSeparator) {
				list[i] = TagSeparator + tmpl
			}
		}
	}
	return t, nil
}

// TaglistSource names the grammar and tag files of one language in a
// GTLANGS checkout.
type TaglistSource struct {
	Lang    string
	Grammar string
	Tags    string
}

// GrammarFileName returns the paradigm grammar used for lang. Lule Sámi
// only ships a standard paradigm.
func GrammarFileName(lang string) string {
	if lang == "smj" {
		return fmt.Sprintf("paradigm_standard.%s.txt", lang)
	}
	return fmt.Sprintf("paradigm_full.%s.txt", lang)
}

// DiscoverSources finds the taglist sources of every language below root,
// laid out as lang-<code>/test/data/korpustags.<code>.txt.
func DiscoverSources(root string) ([]TaglistSource, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "lang-*/test/data/korpustags.*.txt")
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", root, err)
	}
	sort.Strings(matches)

	var out []TaglistSource
	for _, m := range matches {
		lang := strings.TrimSuffix(strings.TrimPrefix(path.Base(m), "korpustags."), ".txt")
		if path.Dir(path.Dir(path.Dir(m))) != "lang-"+lang {
			continue
		}
		dir := filepath.Join(root, filepath.FromSlash(path.Dir(m)))
		out = append(out, TaglistSource{
			Lang:    lang,
			Grammar: filepath.Join(dir, GrammarFileName(lang)),
			Tags:    filepath.Join(root, filepath.FromSlash(m)),
		})
	}
	return out, nil
}
