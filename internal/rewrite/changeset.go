package rewrite

import (
	"fmt"
	"sort"

	"github.com/dgallion1/rebrand/internal/classify"
	"github.com/dgallion1/rebrand/internal/scan"
)

// Hit pairs an occurrence with its classification.
type Hit struct {
	Occ   scan.Occurrence
	Class classify.Classification
}

// ChangeSet is the reviewable outcome of a run: every proposed edit plus
// the occurrences that were deliberately not edited, grouped for review.
type ChangeSet struct {
	Edits   []Edit
	Flagged []Hit // Low-confidence classifications awaiting confirmation.
	Kept    []Hit // Keep-policy occurrences, preserved as-is.

	// ScanOnly holds occurrences found in documents the tool cannot write
	// back (PDF, DOCX, rendered HTML); they need manual follow-up.
	ScanOnly []Hit
}

// Resolve turns classified occurrences into a change set under the policy
// table. Low-confidence hits are flagged and never receive an automatic
// edit; an unmapped category aborts resolution.
func Resolve(hits []Hit, table Table, newToken string) (*ChangeSet, error) {
	cs := &ChangeSet{}
	for _, h := range hits {
		if h.Class.Confidence == classify.Low {
			cs.Flagged = append(cs.Flagged, h)
			continue
		}
		spec, ok := table[h.Class.Category]
		if !ok {
			return nil, &UnmappedCategoryError{Category: h.Class.Category}
		}
		edit := buildEdit(h.Occ, h.Class.Category, spec, newToken)
		if edit == nil {
			cs.Kept = append(cs.Kept, h)
			continue
		}
		cs.Edits = append(cs.Edits, *edit)
	}
	return cs, nil
}

// Documents returns the sorted paths that have at least one edit.
func (cs *ChangeSet) Documents() []string {
	seen := map[string]bool{}
	for _, e := range cs.Edits {
		seen[e.Path] = true
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// EditsFor returns the edits of one document in scan order.
func (cs *ChangeSet) EditsFor(path string) []Edit {
	var out []Edit
	for _, e := range cs.Edits {
		if e.Path == path {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// CountsByCategory tallies edits per category.
func (cs *ChangeSet) CountsByCategory() map[classify.Category]int {
	counts := map[classify.Category]int{}
	for _, e := range cs.Edits {
		counts[e.Category]++
	}
	return counts
}

// StaleEditError means an edit no longer matches the text it was scanned
// from; the whole document's edits must be rejected.
type StaleEditError struct {
	Key string
}

func (e *StaleEditError) Error() string {
	return fmt.Sprintf("edit %s: text changed since scan", e.Key)
}

// ApplyEdits applies a document's edits to its line slice and returns the
// rewritten lines. The input slice is not modified. If any edit no longer
// matches the underlying text, an error is returned and no lines are
// produced, so a document is rewritten whole or not at all.
func ApplyEdits(lines []string, edits []Edit) ([]string, error) {
	out := make([]string, len(lines))
	copy(out, lines)

	byLine := map[int][]Edit{}
	for _, e := range edits {
		if e.Line < 1 || e.Line > len(lines) {
			return nil, fmt.Errorf("edit %s: line %d out of range", e.Key, e.Line)
		}
		if lines[e.Line-1] != e.LineBefore {
			return nil, &StaleEditError{Key: e.Key}
		}
		byLine[e.Line] = append(byLine[e.Line], e)
	}

	for line, lineEdits := range byLine {
		// Apply right-to-left so earlier spans keep their offsets.
		sort.Slice(lineEdits, func(i, j int) bool { return lineEdits[i].Start > lineEdits[j].Start })
		text := out[line-1]
		prevStart := len(text) + 1
		for _, e := range lineEdits {
			if e.End > len(text) || e.End > prevStart {
				return nil, fmt.Errorf("edit %s: overlapping or out-of-bounds span", e.Key)
			}
			if text[e.Start:e.End] != e.OldText {
				return nil, &StaleEditError{Key: e.Key}
			}
			text = text[:e.Start] + e.NewText + text[e.End:]
			prevStart = e.Start
		}
		out[line-1] = text
	}
	return out, nil
}
