package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleSpec is the configuration form of one classification rule. Rules are
// evaluated in list order; the first rule whose structural predicates and
// trigger patterns all hold assigns its category.
//
// Patterns may contain the placeholders {token} and {TOKEN}, replaced at
// compile time with the (quoted) target token in its configured and
// upper-case forms. A pattern containing a placeholder is matched against
// the occurrence's own line and must cover the occurrence span; a pattern
// without one is matched against the whole context window.
type RuleSpec struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`

	// Trigger patterns: the rule fires if any matches (or if empty and a
	// structural predicate is set).
	When []string `yaml:"when,omitempty"`

	// Confirmation cues: when present, a triggered rule without any cue
	// match in the window classifies at low confidence.
	Confirm []string `yaml:"confirm,omitempty"`

	// Structural predicates (all set ones must hold).
	InCodeFence    bool `yaml:"in_code_fence,omitempty"`
	InFrontMatter  bool `yaml:"in_front_matter,omitempty"`
	InTagList      bool `yaml:"in_tag_list,omitempty"`
	InCategoryLine bool `yaml:"in_category_line,omitempty"`
}

type pattern struct {
	re       *regexp.Regexp
	spanning bool // Contains a token placeholder; must cover the occurrence.
}

// Rule is a compiled, ready-to-evaluate classification rule.
type Rule struct {
	spec    RuleSpec
	cat     Category
	when    []pattern
	confirm []*regexp.Regexp
}

// Name returns the rule's configured name.
func (r Rule) Name() string { return r.spec.Name }

// Category returns the category the rule assigns.
func (r Rule) Category() Category { return r.cat }

// Compile validates and compiles a rule list against the target token.
func Compile(specs []RuleSpec, token string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		cat := Category(spec.Category)
		if !cat.Known() {
			return nil, fmt.Errorf("rule %d (%s): unknown category %q", i, spec.Name, spec.Category)
		}
		if spec.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if len(spec.When) == 0 && !spec.InCodeFence && !spec.InFrontMatter && !spec.InTagList && !spec.InCategoryLine {
			return nil, fmt.Errorf("rule %q: no trigger patterns and no structural predicate", spec.Name)
		}

		r := Rule{spec: spec, cat: cat}
		for _, p := range spec.When {
			compiled, spanning, err := compilePattern(p, token)
			if err != nil {
				return nil, fmt.Errorf("rule %q: pattern %q: %w", spec.Name, p, err)
			}
			r.when = append(r.when, pattern{re: compiled, spanning: spanning})
		}
		for _, p := range spec.Confirm {
			compiled, _, err := compilePattern(p, token)
			if err != nil {
				return nil, fmt.Errorf("rule %q: confirm pattern %q: %w", spec.Name, p, err)
			}
			r.confirm = append(r.confirm, compiled)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func compilePattern(p, token string) (*regexp.Regexp, bool, error) {
	spanning := strings.Contains(p, "{token}") || strings.Contains(p, "{TOKEN}")
	p = strings.ReplaceAll(p, "{token}", regexp.QuoteMeta(token))
	p = strings.ReplaceAll(p, "{TOKEN}", regexp.QuoteMeta(strings.ToUpper(token)))
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, false, err
	}
	return re, spanning, nil
}

// DefaultRules is the built-in ordered rule set, most specific first. It
// encodes the edge cases a rebranding pass has to resolve explicitly:
// tokens in tag lists augment rather than replace, tokens in fenced code
// are never prose, and tense-ambiguous narrative is only trusted when the
// window carries a disambiguating cue.
func DefaultRules() []RuleSpec {
	return []RuleSpec{
		{
			Name:      "tag-list",
			Category:  string(TagOrKeyword),
			InTagList: true,
		},
		{
			Name:           "category-label",
			Category:       string(CategoryLabel),
			InCategoryLine: true,
		},
		{
			Name:     "env-var",
			Category: string(EnvironmentVariable),
			When: []string{
				`[A-Z0-9]+_{TOKEN}|{TOKEN}_[A-Z0-9]+|\b{TOKEN}\b(?:[A-Z0-9_]*=)`,
			},
		},
		{
			Name:     "url",
			Category: string(UrlOrPath),
			When: []string{
				`https?://\S*{token}`,
				`\bgithub\.com/\S*{token}`,
			},
		},
		{
			Name:     "path",
			Category: string(FileOrDirectoryName),
			When: []string{
				`(?:~|\.{1,2})?/[\w.~-]*\.?{token}`,
				`\.?{token}/[\w.~-]+`,
				`(?:^|\s)\.{token}\b`,
			},
		},
		{
			Name:     "command",
			Category: string(CommandInvocation),
			When: []string{
				"(?m)^\\s*\\$?\\s*(?:sudo\\s+)?{token}\\s+\\w+",
				"`{token}(?:\\s+[\\w-]+)*`",
			},
		},
		{
			Name:        "fenced-code",
			Category:    string(CommandInvocation),
			InCodeFence: true,
		},
		{
			Name:     "historical-narrative",
			Category: string(HistoricalNarrative),
			When: []string{
				`(?i)\b(began|started|back (when|then)|years ago|at first|originally|first (set up|wrote|built)|history of)\b`,
			},
			Confirm: []string{
				`(?i)\b(was called|used to be|renamed|before the rename|in \d{4}|no longer)\b`,
			},
		},
	}
}
