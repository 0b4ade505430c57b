package scan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Target describes what the scanner looks for.
type Target struct {
	Token      string // Literal term being searched for.
	IgnoreCase bool   // Match regardless of letter case.
	Window     int    // Lines of context on each side of a hit.
}

// Occurrence is one located instance of the target token.
// Immutable once recorded: re-scanning the same text yields the same set.
type Occurrence struct {
	Path string // Document identifier.
	Line int    // 1-based line number.
	Col  int    // 0-based byte offset within the line.
	End  int    // Byte offset one past the matched text.

	Text     string   // Matched text, verbatim from the document.
	LineText string   // The full line containing the match.
	Window   []string // Neighboring lines (including LineText), for classification.
}

// Key returns the stable human-facing identifier "path:line:col" (col 1-based).
func (o Occurrence) Key() string {
	return fmt.Sprintf("%s:%d:%d", o.Path, o.Line, o.Col+1)
}

// Scan finds all word-bounded occurrences of the target token, ordered by
// ascending line then column. Letters and digits are word characters;
// underscore, hyphen, dot, slash and any other punctuation act as
// separators, so the token matches as a segment of compound identifiers
// (DOTFILES_VAULT_BACKEND, ~/.dotfiles/install) but never inside a longer
// word (microdotfiles).
func Scan(path string, lines []string, t Target) []Occurrence {
	if t.Token == "" {
		return nil
	}

	var out []Occurrence
	for i, line := range lines {
		for _, sp := range matchSpans(line, t.Token, t.IgnoreCase) {
			out = append(out, Occurrence{
				Path:     path,
				Line:     i + 1,
				Col:      sp.start,
				End:      sp.end,
				Text:     line[sp.start:sp.end],
				LineText: line,
				Window:   window(lines, i, t.Window),
			})
		}
	}
	return out
}

type span struct{ start, end int }

// matchSpans returns the byte spans of word-bounded matches in a line.
// Case-insensitive matching folds rune by rune rather than lowering the
// whole line, since lowering can change byte lengths (U+0130 and friends)
// and shift every offset after it.
func matchSpans(line, token string, ignoreCase bool) []span {
	var spans []span
	if !ignoreCase {
		from := 0
		for {
			idx := strings.Index(line[from:], token)
			if idx < 0 {
				return spans
			}
			col := from + idx
			end := col + len(token)
			if boundedBefore(line, col) && boundedAfter(line, end) {
				spans = append(spans, span{col, end})
				from = end
			} else {
				from = col + 1
			}
		}
	}

	for i := 0; i < len(line); {
		n := foldPrefixLen(line[i:], token)
		if n > 0 && boundedBefore(line, i) && boundedAfter(line, i+n) {
			spans = append(spans, span{i, i + n})
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(line[i:])
		i += size
	}
	return spans
}

// foldPrefixLen reports how many bytes at the start of s match token under
// simple case folding, or 0 when they do not. The matched length can differ
// from len(token) for multi-byte case pairs.
func foldPrefixLen(s, token string) int {
	i := 0
	for _, tr := range token {
		if i >= len(s) {
			return 0
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if sr != tr && unicode.ToLower(sr) != unicode.ToLower(tr) {
			return 0
		}
		i += size
	}
	return i
}

func boundedBefore(line string, col int) bool {
	if col == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(line[:col])
	return !isWordRune(r)
}

func boundedAfter(line string, end int) bool {
	if end >= len(line) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line[end:])
	return !isWordRune(r)
}

// isWordRune treats only letters and digits as word characters. Underscore
// is deliberately a separator here (unlike regexp's \b), so env-var style
// segments match.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// window copies the lines in [i-n, i+n], clamped to the document.
func window(lines []string, i, n int) []string {
	if n < 0 {
		n = 0
	}
	lo := i - n
	if lo < 0 {
		lo = 0
	}
	hi := i + n + 1
	if hi > len(lines) {
		hi = len(lines)
	}
	out := make([]string, hi-lo)
	copy(out, lines[lo:hi])
	return out
}
