// Package report renders a change set for human review: per-document
// diffs, per-category counts, and a separate section for flagged
// low-confidence items that still need sign-off.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dgallion1/rebrand/internal/classify"
	"github.com/dgallion1/rebrand/internal/rewrite"
)

// DocStatus is the per-document outcome of the apply phase.
type DocStatus string

const (
	StatusProposed DocStatus = "proposed" // Dry-run, nothing written.
	StatusApplied  DocStatus = "applied"
	StatusConflict DocStatus = "conflict" // Rejected whole, nothing written.
	StatusError    DocStatus = "error"
)

// Report is everything the renderer needs about one run.
type Report struct {
	Token       string
	Replacement string
	Apply       bool

	ChangeSet *rewrite.ChangeSet

	// Status and Notes are keyed by document path. Notes carries the
	// conflict/error detail.
	Status map[string]DocStatus
	Notes  map[string]string
}

// Render writes the full human-readable report.
func Render(w io.Writer, r Report) {
	mode := "plan (dry-run)"
	if r.Apply {
		mode = "apply"
	}
	fmt.Fprintf(w, "rebrand %s: %q -> %q\n", mode, r.Token, r.Replacement)
	fmt.Fprintln(w)

	cs := r.ChangeSet
	docs := cs.Documents()
	if len(docs) == 0 {
		fmt.Fprintln(w, "No edits proposed.")
	}

	for _, path := range docs {
		edits := cs.EditsFor(path)
		status := r.Status[path]
		if status == "" {
			status = StatusProposed
		}
		fmt.Fprintf(w, "--- %s (%d edit(s), %s)", path, len(edits), status)
		if note := r.Notes[path]; note != "" {
			fmt.Fprintf(w, ": %s", note)
		}
		fmt.Fprintln(w)
		for _, e := range edits {
			fmt.Fprintf(w, "  %5d [%s] %s\n", e.Line, e.Category, inlineDiff(e.LineBefore, e.LineAfter))
		}
		fmt.Fprintln(w)
	}

	renderFailed(w, r, docs)

	renderCounts(w, cs)
	renderFlagged(w, cs.Flagged)
	renderScanOnly(w, cs.ScanOnly)
	renderKept(w, cs.Kept)

	fmt.Fprintf(w, "Total: %d edit(s) across %d document(s), %d kept, %d flagged, %d scan-only.\n",
		len(cs.Edits), len(docs), len(cs.Kept), len(cs.Flagged), len(cs.ScanOnly))
}

// inlineDiff renders a word-diff of one line: deletions as [-x-],
// insertions as {+y+}.
func inlineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-")
			b.WriteString(d.Text)
			b.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+")
			b.WriteString(d.Text)
			b.WriteString("+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// renderFailed lists error-status documents that never made it into the
// per-document sections (load failures produce no edits).
func renderFailed(w io.Writer, r Report, rendered []string) {
	shown := map[string]bool{}
	for _, p := range rendered {
		shown[p] = true
	}
	var paths []string
	for p, s := range r.Status {
		if s == StatusError && !shown[p] {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	fmt.Fprintln(w, "Failed documents (not scanned):")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s: %s\n", p, r.Notes[p])
	}
	fmt.Fprintln(w)
}

func renderCounts(w io.Writer, cs *rewrite.ChangeSet) {
	counts := cs.CountsByCategory()
	if len(counts) == 0 {
		return
	}
	cats := make([]classify.Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	fmt.Fprintln(w, "Edits by category:")
	for _, c := range cats {
		fmt.Fprintf(w, "  %-24s %d\n", c, counts[c])
	}
	fmt.Fprintln(w)
}

func renderFlagged(w io.Writer, flagged []rewrite.Hit) {
	if len(flagged) == 0 {
		return
	}
	fmt.Fprintf(w, "FLAGGED: %d low-confidence occurrence(s) need confirmation before they can be edited:\n", len(flagged))
	for _, h := range flagged {
		fmt.Fprintf(w, "  %s [%s, rule %s]\n", h.Occ.Key(), h.Class.Category, h.Class.Rule)
		fmt.Fprintf(w, "        %s\n", strings.TrimSpace(h.Occ.LineText))
	}
	fmt.Fprintln(w, "Add a confirmation entry for each key, or re-run apply with --allow-flagged to leave them unchanged.")
	fmt.Fprintln(w)
}

func renderScanOnly(w io.Writer, hits []rewrite.Hit) {
	if len(hits) == 0 {
		return
	}
	byDoc := map[string]int{}
	for _, h := range hits {
		byDoc[h.Occ.Path]++
	}
	paths := make([]string, 0, len(byDoc))
	for p := range byDoc {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Fprintln(w, "Scan-only documents (manual follow-up, not rewritten):")
	for _, p := range paths {
		fmt.Fprintf(w, "  %-40s %d occurrence(s)\n", p, byDoc[p])
	}
	fmt.Fprintln(w)
}

func renderKept(w io.Writer, kept []rewrite.Hit) {
	if len(kept) == 0 {
		return
	}
	byCat := map[classify.Category]int{}
	for _, h := range kept {
		byCat[h.Class.Category]++
	}
	cats := make([]classify.Category, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	fmt.Fprintln(w, "Kept by policy:")
	for _, c := range cats {
		fmt.Fprintf(w, "  %-24s %d\n", c, byCat[c])
	}
	fmt.Fprintln(w)
}
