package rewrite

import (
	"strings"
	"unicode"

	"github.com/dgallion1/rebrand/internal/classify"
	"github.com/dgallion1/rebrand/internal/scan"
)

// Edit is one proposed transformation of an occurrence: a byte span on a
// single line and its replacement text. Edits are only ever applied as part
// of a change set, never individually.
type Edit struct {
	Path  string
	Line  int // 1-based.
	Start int // Byte span within the line. May be wider than the
	End   int // occurrence when an augment duplicates a quoted element.

	OldText string // Text currently in [Start, End).
	NewText string

	LineBefore string // The full line as scanned; apply verifies it.
	LineAfter  string

	Category classify.Category
	Key      string // Occurrence key "path:line:col".
}

// buildEdit produces the edit for one classified occurrence under its
// resolved policy action. Keep yields nil, as does an augment whose line
// already carries the new token.
func buildEdit(occ scan.Occurrence, cat classify.Category, spec PolicySpec, newToken string) *Edit {
	switch spec.Action {
	case Keep:
		return nil
	case ReplaceAndAugment:
		return augmentEdit(occ, cat, spec, newToken)
	default:
		return replaceEdit(occ, cat, newToken)
	}
}

func replaceEdit(occ scan.Occurrence, cat classify.Category, newToken string) *Edit {
	return finishEdit(occ, cat, occ.Col, occ.End, matchCasing(newToken, occ.Text))
}

// augmentEdit inserts the new token next to the old one, new term first.
// When the occurrence is a quoted list element, the whole element is
// duplicated so list syntax stays intact:
//
//	tags: ["dotfiles", "zsh"]  ->  tags: ["blackdot", "dotfiles", "zsh"]
func augmentEdit(occ scan.Occurrence, cat classify.Category, spec PolicySpec, newToken string) *Edit {
	// Re-running over an already augmented list must not duplicate the new
	// term; if the line carries it, the occurrence is kept as-is.
	if len(scan.Scan(occ.Path, []string{occ.LineText}, scan.Target{Token: newToken, IgnoreCase: true})) > 0 {
		return nil
	}

	cased := matchCasing(newToken, occ.Text)
	sep := spec.separator()

	line := occ.LineText
	if occ.Col > 0 && occ.End < len(line) {
		q := line[occ.Col-1]
		if (q == '"' || q == '\'') && line[occ.End] == q {
			start, end := occ.Col-1, occ.End+1
			old := line[start:end]
			return finishEdit(occ, cat, start, end, string(q)+cased+string(q)+sep+old)
		}
	}
	return finishEdit(occ, cat, occ.Col, occ.End, cased+sep+occ.Text)
}

func finishEdit(occ scan.Occurrence, cat classify.Category, start, end int, newText string) *Edit {
	line := occ.LineText
	return &Edit{
		Path:       occ.Path,
		Line:       occ.Line,
		Start:      start,
		End:        end,
		OldText:    line[start:end],
		NewText:    newText,
		LineBefore: line,
		LineAfter:  line[:start] + newText + line[end:],
		Category:   cat,
		Key:        occ.Key(),
	}
}

// matchCasing shapes the replacement after the casing pattern of the
// matched text: ALLCAPS, lowercase and Titlecase are preserved, anything
// else passes the replacement through verbatim.
func matchCasing(replacement, matched string) string {
	switch {
	case matched == strings.ToUpper(matched) && matched != strings.ToLower(matched):
		return strings.ToUpper(replacement)
	case matched == strings.ToLower(matched):
		return strings.ToLower(replacement)
	case isTitleCase(matched):
		return titleCase(replacement)
	default:
		return replacement
	}
}

func isTitleCase(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	return string(runes[1:]) == strings.ToLower(string(runes[1:]))
}

func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
