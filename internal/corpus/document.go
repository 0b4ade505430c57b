package corpus

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Document is one member of the corpus: its identity, its text as an
// ordered line sequence, and the content hash taken at load time. The hash
// is what the apply phase checks to detect writes that raced a scan.
type Document struct {
	Path    string // Corpus-relative identifier, slash-separated.
	AbsPath string // Location on disk.

	Lines []string
	Hash  string // sha256 of the raw bytes at load time.

	// Editable documents can be rewritten line-for-line. Extracted formats
	// (PDF, DOCX, HTML) are scan-only: occurrences are reported but never
	// applied.
	Editable bool

	trailingNewline bool
}

// Content reassembles the document text from its lines.
func (d *Document) Content() string {
	s := strings.Join(d.Lines, "\n")
	if d.trailingNewline {
		s += "\n"
	}
	return s
}

// Render joins replacement lines using the document's original trailing
// newline convention.
func (d *Document) Render(lines []string) string {
	s := strings.Join(lines, "\n")
	if d.trailingNewline {
		s += "\n"
	}
	return s
}

// ContentHashHex computes the sha256 of content as a hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// splitLines breaks raw text into lines, recording whether the text ended
// with a newline so an edited document round-trips byte-identically outside
// the edited spans.
func splitLines(data []byte) (lines []string, trailing bool) {
	s := string(data)
	trailing = strings.HasSuffix(s, "\n")
	if trailing {
		s = strings.TrimSuffix(s, "\n")
	}
	if s == "" && trailing {
		return []string{""}, true
	}
	return strings.Split(s, "\n"), trailing
}
