package classify

import (
	"strings"

	"github.com/dgallion1/rebrand/internal/scan"
)

// Classifier assigns exactly one category to each occurrence by evaluating
// rules in priority order, first match wins. Rules are pure functions of
// the occurrence window and precomputed document structure, so a given
// input always classifies the same way.
type Classifier struct {
	rules []Rule
}

// New builds a classifier over a compiled rule list.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the first matching rule's category, or GenericReference
// when no rule matches. A rule with confirmation cues that triggers without
// any cue in the window yields its category at low confidence.
func (c *Classifier) Classify(occ scan.Occurrence, st DocStructure) Classification {
	for _, r := range c.rules {
		matched, low := r.match(occ, st)
		if !matched {
			continue
		}
		conf := High
		if low {
			conf = Low
		}
		return Classification{Category: r.cat, Confidence: conf, Rule: r.spec.Name}
	}
	return Classification{Category: GenericReference, Confidence: High, Rule: "default"}
}

func (r Rule) match(occ scan.Occurrence, st DocStructure) (matched, low bool) {
	if r.spec.InCodeFence && !st.InCodeFence(occ.Line) {
		return false, false
	}
	if r.spec.InFrontMatter && !st.InFrontMatter(occ.Line) {
		return false, false
	}
	if r.spec.InTagList && !st.InTagLine(occ.Line) {
		return false, false
	}
	if r.spec.InCategoryLine && !st.InCategoryLine(occ.Line) {
		return false, false
	}

	if len(r.when) > 0 {
		triggered := false
		for _, p := range r.when {
			if p.matches(occ) {
				triggered = true
				break
			}
		}
		if !triggered {
			return false, false
		}
	}

	if len(r.confirm) > 0 {
		window := strings.Join(occ.Window, "\n")
		for _, cue := range r.confirm {
			if cue.MatchString(window) {
				return true, false
			}
		}
		return true, true
	}
	return true, false
}

// matches evaluates one trigger pattern. Spanning patterns (those that
// reference the token) must cover the occurrence's own span on its line;
// plain patterns may match anywhere in the window.
func (p pattern) matches(occ scan.Occurrence) bool {
	if !p.spanning {
		return p.re.MatchString(strings.Join(occ.Window, "\n"))
	}
	for _, m := range p.re.FindAllStringIndex(occ.LineText, -1) {
		if m[0] <= occ.Col && m[1] >= occ.End {
			return true
		}
	}
	return false
}
