package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/rebrand/internal/classify"
	"github.com/dgallion1/rebrand/internal/rewrite"
)

// Config is the immutable per-run configuration: the token being renamed,
// the classification rules, and the per-category policies. It is passed
// into the engine explicitly so runs and tests never share ambient state.
type Config struct {
	// Token is the term being searched for; Replacement is the new term.
	Token       string `yaml:"token"`
	Replacement string `yaml:"replacement"`

	IgnoreCase bool `yaml:"ignore_case"`

	// Window is the number of context lines on each side of an occurrence
	// given to the classifier.
	Window int `yaml:"window"`

	// Corpus is the directory (or single file) to scan. The --corpus flag
	// overrides it.
	Corpus string `yaml:"corpus"`

	// Extensions restricts which supported file types are loaded. Empty
	// means all supported types.
	Extensions []string `yaml:"extensions,omitempty"`

	// Rules are evaluated in order, first match wins. Empty means the
	// built-in default rule set.
	Rules []classify.RuleSpec `yaml:"rules,omitempty"`

	// Policies maps each category to its action.
	Policies map[string]rewrite.PolicySpec `yaml:"policies"`

	// Confirmations resolve flagged low-confidence occurrences by key.
	Confirmations []Confirmation `yaml:"confirmations,omitempty"`

	// Workers bounds parallel per-document scanning. Not part of the YAML
	// file; set from env or flags.
	Workers int `yaml:"-"`
}

// Confirmation is an explicit human sign-off for one flagged occurrence.
type Confirmation struct {
	// Key identifies the occurrence as "path:line:col".
	Key string `yaml:"key"`
	// Category to trust for this occurrence.
	Category string `yaml:"category"`
}

var keyRe = regexp.MustCompile(`^.+:\d+:\d+$`)

// Load reads a YAML run configuration and applies defaults and env knobs.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Window == 0 {
		cfg.Window = 2
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = classify.DefaultRules()
	}
	cfg.Window = envInt("REBRAND_WINDOW", cfg.Window)
	cfg.Workers = envInt("REBRAND_WORKERS", 4)
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return cfg, nil
}

// Validate checks the configuration before a run. Every category used by
// the rule set (plus the fallback) must have a policy entry; rules and
// confirmations must be well formed.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	if c.Replacement == "" {
		return fmt.Errorf("replacement is required")
	}
	if c.Corpus == "" {
		return fmt.Errorf("corpus path is required")
	}
	if c.Window < 0 {
		return fmt.Errorf("window must be >= 0")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	rules, err := classify.Compile(c.Rules, c.Token)
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	used := make([]classify.Category, 0, len(rules)+len(c.Confirmations))
	for _, r := range rules {
		used = append(used, r.Category())
	}

	// A confirmed category drives an edit just like a rule's, so it needs a
	// policy entry too.
	for _, conf := range c.Confirmations {
		if !keyRe.MatchString(conf.Key) {
			return fmt.Errorf("confirmation key %q: expected path:line:col", conf.Key)
		}
		if !classify.Category(conf.Category).Known() {
			return fmt.Errorf("confirmation %q: unknown category %q", conf.Key, conf.Category)
		}
		used = append(used, classify.Category(conf.Category))
	}

	return c.Table().Validate(used)
}

// Table converts the YAML policy map into a typed policy table.
func (c Config) Table() rewrite.Table {
	t := make(rewrite.Table, len(c.Policies))
	for cat, spec := range c.Policies {
		t[classify.Category(cat)] = spec
	}
	return t
}

// ExtensionSet returns the configured extensions as a lookup set.
func (c Config) ExtensionSet() map[string]bool {
	if len(c.Extensions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Extensions))
	for _, ext := range c.Extensions {
		set[strings.ToLower(ext)] = true
	}
	return set
}

// ConfirmedCategory returns the confirmed category for an occurrence key.
func (c Config) ConfirmedCategory(key string) (classify.Category, bool) {
	for _, conf := range c.Confirmations {
		if conf.Key == key {
			return classify.Category(conf.Category), true
		}
	}
	return "", false
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
