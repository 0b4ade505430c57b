package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LineRange is a 1-based inclusive span of document lines.
type LineRange struct {
	Start, End int
}

func (r LineRange) contains(line int) bool {
	return r.Start > 0 && line >= r.Start && line <= r.End
}

// DocStructure holds precomputed structural spans of a document that rules
// consult: fenced code regions, front matter, tag and category lines.
// Empty for non-markdown documents.
type DocStructure struct {
	CodeFences    []LineRange
	FrontMatter   LineRange
	TagLines      map[int]bool
	CategoryLines map[int]bool
}

// InCodeFence reports whether the line sits inside a fenced or indented
// code block (delimiters included).
func (s DocStructure) InCodeFence(line int) bool {
	for _, r := range s.CodeFences {
		if r.contains(line) {
			return true
		}
	}
	return false
}

// InFrontMatter reports whether the line sits inside the YAML front matter.
func (s DocStructure) InFrontMatter(line int) bool {
	return s.FrontMatter.contains(line)
}

// InTagLine reports whether the line belongs to a tags/keywords list.
func (s DocStructure) InTagLine(line int) bool {
	return s.TagLines[line]
}

// InCategoryLine reports whether the line belongs to a category/section label.
func (s DocStructure) InCategoryLine(line int) bool {
	return s.CategoryLines[line]
}

var (
	tagKeyRe      = regexp.MustCompile(`^\s*(tags|keywords)\s*:`)
	categoryKeyRe = regexp.MustCompile(`^\s*(category|categories|section)\s*:`)
	listItemRe    = regexp.MustCompile(`^\s*-\s`)
)

// AnalyzeText computes the structural spans detectable line-wise, without
// a markdown parser: front matter plus tag and category lines. This is the
// whole structure for editable non-markdown formats (YAML, TOML, plain
// text), where a tags/categories key carries the same meaning it does in
// front matter.
func AnalyzeText(lines []string) DocStructure {
	st := DocStructure{
		TagLines:      make(map[int]bool),
		CategoryLines: make(map[int]bool),
	}

	st.FrontMatter = frontMatterRange(lines)

	// A tags/categories key means the same thing inside front matter and
	// out of it (YAML config, inline snippets), so mark the whole document.
	markKeyedLines(lines, tagKeyRe, st.TagLines)
	markKeyedLines(lines, categoryKeyRe, st.CategoryLines)
	return st
}

// AnalyzeMarkdown computes the structural spans of a markdown source: the
// line-wise spans plus fenced code regions from the goldmark AST (goldmark
// core does not model front matter, so that stays line-wise).
func AnalyzeMarkdown(src []byte) DocStructure {
	lines := strings.Split(string(src), "\n")
	starts := lineStarts(src)

	st := AnalyzeText(lines)

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			if r, ok := blockRange(n, starts); ok {
				if n.Kind() == ast.KindFencedCodeBlock {
					// Include the fence delimiter lines.
					if r.Start > 1 {
						r.Start--
					}
					if r.End < len(lines) {
						r.End++
					}
				}
				st.CodeFences = append(st.CodeFences, r)
			}
		}
		return ast.WalkContinue, nil
	})

	return st
}

// frontMatterRange detects a leading "---" delimited block.
func frontMatterRange(lines []string) LineRange {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return LineRange{}
	}
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "---" || trimmed == "..." {
			return LineRange{Start: 1, End: i + 1}
		}
	}
	return LineRange{}
}

// markKeyedLines records each key line and its following "- item" lines.
func markKeyedLines(lines []string, key *regexp.Regexp, out map[int]bool) {
	for i := 1; i <= len(lines); i++ {
		if !key.MatchString(lines[i-1]) {
			continue
		}
		out[i] = true
		for j := i + 1; j <= len(lines); j++ {
			if !listItemRe.MatchString(lines[j-1]) {
				break
			}
			out[j] = true
		}
	}
}

// blockRange maps a goldmark block node's content segments to line numbers.
func blockRange(n ast.Node, starts []int) (LineRange, bool) {
	segs := n.Lines()
	if segs == nil || segs.Len() == 0 {
		return LineRange{}, false
	}
	first := segs.At(0)
	last := segs.At(segs.Len() - 1)
	return LineRange{
		Start: lineOf(starts, first.Start),
		End:   lineOf(starts, last.Start),
	}, true
}

// lineStarts returns the byte offset of each line start.
func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf converts a byte offset to a 1-based line number.
func lineOf(starts []int, offset int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	return i
}
