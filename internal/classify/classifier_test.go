package classify

import (
	"strings"
	"testing"

	"github.com/dgallion1/rebrand/internal/scan"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	rules, err := Compile(DefaultRules(), "dotfiles")
	if err != nil {
		t.Fatalf("compile default rules: %v", err)
	}
	return New(rules)
}

func classifyDoc(t *testing.T, src string) []Classification {
	t.Helper()
	c := defaultClassifier(t)
	st := AnalyzeMarkdown([]byte(src))
	lines := strings.Split(src, "\n")
	occs := scan.Scan("doc.md", lines, scan.Target{Token: "dotfiles", IgnoreCase: true, Window: 2})

	out := make([]Classification, len(occs))
	for i, o := range occs {
		out[i] = c.Classify(o, st)
	}
	return out
}

func singleClassification(t *testing.T, src string) Classification {
	t.Helper()
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected exactly 1 occurrence in %q, got %d", src, len(cls))
	}
	return cls[0]
}

func TestClassify_EnvironmentVariable(t *testing.T) {
	got := singleClassification(t, "export DOTFILES_VAULT_BACKEND=bitwarden")
	if got.Category != EnvironmentVariable {
		t.Errorf("expected %s, got %s (rule %s)", EnvironmentVariable, got.Category, got.Rule)
	}
	if got.Confidence != High {
		t.Errorf("expected high confidence, got %s", got.Confidence)
	}
}

func TestClassify_Url(t *testing.T) {
	got := singleClassification(t, "See https://github.com/alice/dotfiles for the code.")
	if got.Category != UrlOrPath {
		t.Errorf("expected %s, got %s (rule %s)", UrlOrPath, got.Category, got.Rule)
	}
}

func TestClassify_Path(t *testing.T) {
	for _, line := range []string{
		"Everything lives in ~/.dotfiles/install these days.",
		"The .dotfiles directory is hidden.",
	} {
		got := singleClassification(t, line)
		if got.Category != FileOrDirectoryName {
			t.Errorf("%q: expected %s, got %s (rule %s)", line, FileOrDirectoryName, got.Category, got.Rule)
		}
	}
}

func TestClassify_CommandInvocation(t *testing.T) {
	got := singleClassification(t, "Run `dotfiles vault restore` to fetch secrets.")
	if got.Category != CommandInvocation {
		t.Errorf("expected %s, got %s (rule %s)", CommandInvocation, got.Category, got.Rule)
	}
}

func TestClassify_FencedCodeNeverProse(t *testing.T) {
	src := "Intro prose.\n\n```sh\ndotfiles sync\n```\n"
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(cls))
	}
	if cls[0].Category != CommandInvocation {
		t.Errorf("inside fence: expected %s, got %s (rule %s)", CommandInvocation, cls[0].Category, cls[0].Rule)
	}
}

func TestClassify_FencedBareTokenStillCode(t *testing.T) {
	// A bare token in a fence matches no sub-pattern but must never fall
	// through to a prose category.
	src := "```\ndotfiles\n```\n"
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(cls))
	}
	if cls[0].Category != CommandInvocation {
		t.Errorf("expected %s, got %s (rule %s)", CommandInvocation, cls[0].Category, cls[0].Rule)
	}
}

func TestClassify_UrlInsideFence(t *testing.T) {
	src := "```\ngit clone https://github.com/alice/dotfiles\n```\n"
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(cls))
	}
	if cls[0].Category != UrlOrPath {
		t.Errorf("url in fence: expected %s, got %s (rule %s)", UrlOrPath, cls[0].Category, cls[0].Rule)
	}
}

func TestClassify_TagList(t *testing.T) {
	src := "---\ntitle: Post\ntags: [\"dotfiles\", \"zsh\"]\n---\n\nBody.\n"
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(cls))
	}
	if cls[0].Category != TagOrKeyword {
		t.Errorf("expected %s, got %s (rule %s)", TagOrKeyword, cls[0].Category, cls[0].Rule)
	}
}

func TestClassify_TagListBlockStyle(t *testing.T) {
	src := "---\ntags:\n  - dotfiles\n  - zsh\n---\n\nBody.\n"
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(cls))
	}
	if cls[0].Category != TagOrKeyword {
		t.Errorf("expected %s, got %s (rule %s)", TagOrKeyword, cls[0].Category, cls[0].Rule)
	}
}

func TestClassify_CategoryLabel(t *testing.T) {
	src := "---\ncategories: [\"dotfiles\"]\n---\n\nBody.\n"
	cls := classifyDoc(t, src)
	if len(cls) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(cls))
	}
	if cls[0].Category != CategoryLabel {
		t.Errorf("expected %s, got %s (rule %s)", CategoryLabel, cls[0].Category, cls[0].Rule)
	}
}

func TestClassify_HistoricalNarrativeWithCue(t *testing.T) {
	got := singleClassification(t, "My dotfiles began life in 2015, before the rename to blackdot.")
	if got.Category != HistoricalNarrative {
		t.Errorf("expected %s, got %s (rule %s)", HistoricalNarrative, got.Category, got.Rule)
	}
	if got.Confidence != High {
		t.Errorf("disambiguated narrative should be high confidence, got %s", got.Confidence)
	}
}

func TestClassify_AmbiguousNarrativeIsLowConfidence(t *testing.T) {
	got := singleClassification(t, "My dotfiles began with hardcoded calls")
	if got.Category != HistoricalNarrative {
		t.Errorf("expected %s, got %s (rule %s)", HistoricalNarrative, got.Category, got.Rule)
	}
	if got.Confidence != Low {
		t.Errorf("ambiguous narrative must be low confidence, got %s", got.Confidence)
	}
}

func TestClassify_DefaultGenericReference(t *testing.T) {
	got := singleClassification(t, "I enjoy maintaining dotfiles as a hobby.")
	if got.Category != GenericReference {
		t.Errorf("expected %s, got %s (rule %s)", GenericReference, got.Category, got.Rule)
	}
	if got.Rule != "default" {
		t.Errorf("expected fallback rule, got %s", got.Rule)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	src := "export DOTFILES_HOME=~\n\nMy dotfiles began somewhere.\n"
	a := classifyDoc(t, src)
	b := classifyDoc(t, src)
	if len(a) != len(b) {
		t.Fatalf("nondeterministic occurrence count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("classification %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestCompile_RejectsBadRules(t *testing.T) {
	cases := []struct {
		name  string
		specs []RuleSpec
	}{
		{"unknown category", []RuleSpec{{Name: "x", Category: "nope", When: []string{"a"}}}},
		{"missing name", []RuleSpec{{Category: string(UrlOrPath), When: []string{"a"}}}},
		{"no trigger", []RuleSpec{{Name: "x", Category: string(UrlOrPath)}}},
		{"bad regex", []RuleSpec{{Name: "x", Category: string(UrlOrPath), When: []string{"("}}}},
		{"bad confirm regex", []RuleSpec{{Name: "x", Category: string(UrlOrPath), When: []string{"a"}, Confirm: []string{"("}}}},
	}
	for _, tc := range cases {
		if _, err := Compile(tc.specs, "dotfiles"); err == nil {
			t.Errorf("%s: expected compile error", tc.name)
		}
	}
}

func TestCompile_TokenPlaceholderQuoting(t *testing.T) {
	// A token with regex metacharacters must be quoted on substitution.
	rules, err := Compile([]RuleSpec{
		{Name: "x", Category: string(UrlOrPath), When: []string{`https?://\S*{token}`}},
	}, "dot.files")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	c := New(rules)

	lines := []string{"https://example.com/dot.files"}
	occs := scan.Scan("d", lines, scan.Target{Token: "dot.files"})
	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	got := c.Classify(occs[0], DocStructure{})
	if got.Category != UrlOrPath {
		t.Errorf("expected %s, got %s", UrlOrPath, got.Category)
	}
}
