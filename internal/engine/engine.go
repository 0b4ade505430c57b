// Package engine wires the pipeline together: load corpus, scan and
// classify documents in parallel, resolve policies into a change set, and
// optionally apply it document by document.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/rebrand/internal/classify"
	"github.com/dgallion1/rebrand/internal/config"
	"github.com/dgallion1/rebrand/internal/corpus"
	"github.com/dgallion1/rebrand/internal/report"
	"github.com/dgallion1/rebrand/internal/rewrite"
	"github.com/dgallion1/rebrand/internal/scan"
)

// Options control one run.
type Options struct {
	// Apply writes edited documents back; otherwise dry-run.
	Apply bool
	// AllowFlagged lets an apply run exit zero even when flagged
	// low-confidence items remain unconfirmed.
	AllowFlagged bool
}

// Result is everything a run produced, ready for the reporter.
type Result struct {
	ChangeSet *rewrite.ChangeSet
	Status    map[string]report.DocStatus
	Notes     map[string]string

	Applied   int
	Conflicts int
	Failed    int // Documents that could not be loaded or written.
}

// ExitCode maps the run outcome to the process exit status: 0 clean, 2
// when flagged items remain unresolved or a document conflicted or failed.
func (r *Result) ExitCode(opts Options) int {
	if r.Conflicts > 0 || r.Failed > 0 {
		return 2
	}
	if len(r.ChangeSet.Flagged) > 0 && !opts.AllowFlagged {
		return 2
	}
	return 0
}

// docHits is the per-document outcome of the scan+classify phase.
type docHits struct {
	doc  *corpus.Document
	hits []rewrite.Hit
}

// Run executes one batch run under an immutable configuration.
func Run(ctx context.Context, log *slog.Logger, cfg config.Config, opts Options) (*Result, error) {
	rules, err := classify.Compile(cfg.Rules, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	classifier := classify.New(rules)
	table := cfg.Table()

	docs, failed, err := corpus.Load(cfg.Corpus, cfg.ExtensionSet())
	if err != nil {
		return nil, err
	}
	log.Info("corpus loaded", "documents", len(docs), "failed", len(failed))

	target := scan.Target{Token: cfg.Token, IgnoreCase: cfg.IgnoreCase, Window: cfg.Window}

	// Scan and classify documents in parallel; they share no mutable
	// state. Results land in a slice indexed by document so the fan-in
	// keeps the corpus's sorted order regardless of completion order.
	perDoc := make([]docHits, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perDoc[i] = docHits{doc: doc, hits: classifyDoc(classifier, doc, target, cfg)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var editable, scanOnly []rewrite.Hit
	for _, dh := range perDoc {
		if dh.doc.Editable {
			editable = append(editable, dh.hits...)
		} else {
			scanOnly = append(scanOnly, dh.hits...)
		}
		if len(dh.hits) > 0 {
			log.Info("scanned document", "path", dh.doc.Path, "occurrences", len(dh.hits), "editable", dh.doc.Editable)
		}
	}

	cs, err := rewrite.Resolve(editable, table, cfg.Replacement)
	if err != nil {
		return nil, err
	}
	cs.ScanOnly = scanOnly

	res := &Result{
		ChangeSet: cs,
		Status:    map[string]report.DocStatus{},
		Notes:     map[string]string{},
	}
	for _, f := range failed {
		res.Status[f.Path] = report.StatusError
		res.Notes[f.Path] = f.Err.Error()
		res.Failed++
		log.Warn("document skipped, load failed", "path", f.Path, "error", f.Err)
	}

	if !opts.Apply {
		for _, path := range cs.Documents() {
			res.Status[path] = report.StatusProposed
		}
		return res, nil
	}

	if err := applyAll(ctx, log, docs, cs, res); err != nil {
		return nil, err
	}
	return res, nil
}

// applyAll is the apply phase: single-threaded on purpose, so writes never
// interleave and the report order is deterministic. A failing document
// rejects all of its edits and the run moves on.
func applyAll(ctx context.Context, log *slog.Logger, docs []*corpus.Document, cs *rewrite.ChangeSet, res *Result) error {
	byPath := make(map[string]*corpus.Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
	}
	for _, path := range cs.Documents() {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := byPath[path]
		newLines, err := rewrite.ApplyEdits(doc.Lines, cs.EditsFor(path))
		if err == nil {
			err = corpus.WriteBack(doc, newLines)
		}
		switch {
		case err == nil:
			res.Status[path] = report.StatusApplied
			res.Applied++
			log.Info("document rewritten", "path", path)
		case isConflict(err):
			res.Status[path] = report.StatusConflict
			res.Notes[path] = err.Error()
			res.Conflicts++
			log.Warn("document conflicted, edits rejected", "path", path, "error", err)
		default:
			res.Status[path] = report.StatusError
			res.Notes[path] = err.Error()
			res.Failed++
			log.Error("document write failed", "path", path, "error", err)
		}
	}
	return nil
}

// classifyDoc scans one document and classifies every occurrence, applying
// any configured confirmations to flagged hits.
func classifyDoc(classifier *classify.Classifier, doc *corpus.Document, target scan.Target, cfg config.Config) []rewrite.Hit {
	var st classify.DocStructure
	switch {
	case isMarkdown(doc.Path):
		st = classify.AnalyzeMarkdown([]byte(doc.Content()))
	case doc.Editable:
		// YAML/TOML/plain text carry no fences but their tags/categories
		// keys mean the same thing front matter's do.
		st = classify.AnalyzeText(doc.Lines)
	}

	occs := scan.Scan(doc.Path, doc.Lines, target)
	hits := make([]rewrite.Hit, 0, len(occs))
	for _, occ := range occs {
		cls := classifier.Classify(occ, st)
		if cls.Confidence == classify.Low {
			if cat, ok := cfg.ConfirmedCategory(occ.Key()); ok {
				cls = classify.Classification{Category: cat, Confidence: classify.High, Rule: "confirmed"}
			}
		}
		hits = append(hits, rewrite.Hit{Occ: occ, Class: cls})
	}
	return hits
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func isConflict(err error) bool {
	var wc *corpus.WriteConflictError
	var stale *rewrite.StaleEditError
	return errors.As(err, &wc) || errors.As(err, &stale)
}
