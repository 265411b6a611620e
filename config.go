package giellamorph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguages are the languages served when a config lists none.
var DefaultLanguages = []string{"fin", "sma", "sme", "smj", "smn", "sms"}

// Backend names accepted in LanguageConfig.Backend.
const (
	BackendHFST  = "hfst"
	BackendTable = "table"
)

// Config is the complete engine configuration.
type Config struct {
	// DataDir holds one directory of transducers per language
	// (default /usr/share/giella).
	DataDir string `yaml:"data_dir"`
	// TemplateDir holds pre-built <lang>.json template files.
	TemplateDir string `yaml:"template_dir"`
	// LookupCommand is the hfst lookup binary (default hfst-optimized-lookup).
	LookupCommand string `yaml:"lookup_command"`
	// CacheSize bounds the per-transducer lookup cache; 0 disables it.
	CacheSize int `yaml:"cache_size"`
	// Languages configures each served language.
	Languages []LanguageConfig `yaml:"languages"`
	// Server configures cmd/server.
	Server ServerConfig `yaml:"server"`
}

// LanguageConfig describes where the oracle and the tables of one
// language come from.
type LanguageConfig struct {
	Code string `yaml:"code"`
	// Backend selects the transducer implementation: hfst, table or any
	// backend registered with RegisterBackend.
	Backend   string `yaml:"backend"`
	Analyser  string `yaml:"analyser"`
	Generator string `yaml:"generator"`
	// Store is backend specific, e.g. the SQLite database of the sqlite
	// backend.
	Store string `yaml:"store"`
	// Templates is a pre-built template file. When empty the templates are
	// built from Grammar and Tags.
	Templates string `yaml:"templates"`
	Grammar   string `yaml:"grammar"`
	Tags      string `yaml:"tags"`
	// Rules is a YAML rule table; empty selects the built-in one if any.
	Rules string `yaml:"rules"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Reload rebuilds a language when one of its table files changes.
	Reload bool `yaml:"reload"`
}

// DefaultConfig returns a Config with one hfst language per default code.
func DefaultConfig() *Config {
	cfg := &Config{
		DataDir:       "/usr/share/giella",
		TemplateDir:   "generator/data",
		LookupCommand: DefaultLookupCommand,
		CacheSize:     4096,
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
	for _, code := range DefaultLanguages {
		cfg.Languages = append(cfg.Languages, LanguageConfig{Code: code})
	}
	return cfg
}

// LoadConfig reads a YAML config on top of DefaultConfig. A config that
// lists languages replaces the default language list.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := DefaultConfig()
	cfg.Languages = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultConfig().Languages
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	seen := make(map[string]bool)
	for i, l := range c.Languages {
		if l.Code == "" {
			return fmt.Errorf("languages[%d].code is required", i)
		}
		if seen[l.Code] {
			return fmt.Errorf("language %s configured twice", l.Code)
		}
		seen[l.Code] = true
		if l.Backend == BackendTable && (l.Analyser == "" || l.Generator == "") {
			return fmt.Errorf("language %s: table backend needs analyser and generator", l.Code)
		}
	}
	return nil
}

// Language returns the resolved config of code.
func (c *Config) Language(code string) (LanguageConfig, bool) {
	for _, l := range c.Languages {
		if l.Code == code {
			return c.resolve(l), true
		}
	}
	return LanguageConfig{}, false
}

// resolve fills in default file locations. Backends named hfst or
// hfst+<something> get the default transducer files under DataDir.
func (c *Config) resolve(l LanguageConfig) LanguageConfig {
	if l.Backend == "" {
		l.Backend = BackendHFST
	}
	if strings.HasPrefix(l.Backend, BackendHFST) {
		if l.Analyser == "" {
			l.Analyser = "analyser-gt-desc.hfstol"
		}
		if l.Generator == "" {
			l.Generator = "generator-gt-norm.hfstol"
		}
		l.Analyser = c.dataPath(l.Code, l.Analyser)
		l.Generator = c.dataPath(l.Code, l.Generator)
	}
	if l.Templates == "" && l.Grammar == "" && c.TemplateDir != "" {
		l.Templates = filepath.Join(c.TemplateDir, l.Code+".json")
	}
	return l
}

func (c *Config) dataPath(code, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.DataDir, code, file)
}

// Files returns the table files of l that a reload should watch.
func (l LanguageConfig) Files() []string {
	var out []string
	for _, f := range []string{l.Templates, l.Grammar, l.Tags, l.Rules} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
