package linewrap

import (
	"regexp"
	"strings"
)

// LineEndsWithTag reports whether the line ends with a template tag or HTML
// comment closing delimiter.
func LineEndsWithTag(line string) bool {
	stripped := strings.TrimRight(line, " \t")
	if stripped == "" {
		return false
	}
	for _, f := range tagFamilies {
		if strings.HasSuffix(stripped, f.close) {
			return true
		}
	}
	return false
}

// LineStartsWithTag reports whether the line starts with a template tag or
// HTML comment opening delimiter.
func LineStartsWithTag(line string) bool {
	stripped := strings.TrimLeft(line, " \t")
	if stripped == "" {
		return false
	}
	for _, f := range tagFamilies {
		if strings.HasPrefix(stripped, f.open) {
			return true
		}
	}
	return false
}

// lineIsTagOnly reports whether the line consists of tag content only: it
// begins with an opening delimiter and ends with a closing delimiter.
func lineIsTagOnly(line string) bool {
	return LineStartsWithTag(line) && LineEndsWithTag(line)
}

// Adjacency normalization. A closing tag glued directly onto the preceding
// tag's closing delimiter (`%}{% /f %}`) would otherwise tokenize as part of
// the same whitespace-delimited word; normalize inserts one separating space
// before word splitting, and denormalize removes it from the wrapped output,
// restoring the original adjacency. Both are restricted to the
// closing-delimiter→closing-tag case so that genuinely space-separated tags in
// prose are never glued together.
type adjacencyRule struct {
	re   *regexp.Regexp
	repl string
}

var (
	normalizeRules = []adjacencyRule{
		{regexp.MustCompile(`%\}\{%(\s*/)`), "%} {%$1"},
		{regexp.MustCompile(`#\}\{#(\s*/)`), "#} {#$1"},
		{regexp.MustCompile(`\}\}\{\{(\s*/)`), "}} {{$1"},
		{regexp.MustCompile(`--><!--(\s*/)`), "--> <!--$1"},
	}
	denormalizeRules = []adjacencyRule{
		{regexp.MustCompile(`%\} \{%(\s*/)`), "%}{%$1"},
		{regexp.MustCompile(`#\} \{#(\s*/)`), "#}{#$1"},
		{regexp.MustCompile(`\}\} \{\{(\s*/)`), "}}{{$1"},
		{regexp.MustCompile(`--> <!--(\s*/)`), "--><!--$1"},
	}
)

// NormalizeAdjacentTags inserts a single space between a tag's closing
// delimiter and an immediately-following closing tag of the same family.
func NormalizeAdjacentTags(text string) string {
	for _, r := range normalizeRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

// DenormalizeAdjacentTags removes the space NormalizeAdjacentTags inserted,
// restoring original adjacency in wrapped output.
func DenormalizeAdjacentTags(text string) string {
	for _, r := range denormalizeRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

// closingTagLineREs match lines that are purely a closing tag, with optional
// surrounding whitespace.
var closingTagLineREs = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\{%\s*/.*%\}\s*$`),
	regexp.MustCompile(`^\s*\{#\s*/.*#\}\s*$`),
	regexp.MustCompile(`^\s*\{\{\s*/.*\}\}\s*$`),
	regexp.MustCompile(`^\s*<!--\s*/.*-->\s*$`),
}

func lineIsClosingTagOnly(line string) bool {
	for _, re := range closingTagLineREs {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// AddTagNewlineHandling decorates a LineWrapper so newlines around template
// tags, HTML comments, and block content between tags are preserved.
//
// The text is split into maximal segments with no internal tag or block
// boundary; each segment is wrapped independently and the segments are
// rejoined with newlines, so a required newline can never be merged away.
//
// Known limitation: this operates on text after the host Markdown parser has
// already built its tree. If that parser absorbed a tag as list-item
// continuation, the newline is preserved but the added indentation cannot be
// undone here; the blank-line insertion below is the workaround.
func AddTagNewlineHandling(base LineWrapper) LineWrapper {
	return func(text, initialIndent, subsequentIndent string) string {
		if !strings.Contains(text, "\n") {
			return postProcessTags(base(text, initialIndent, subsequentIndent))
		}

		lines := strings.Split(text, "\n")
		hasTagLine := false
		for _, line := range lines {
			if LineStartsWithTag(line) || LineEndsWithTag(line) {
				hasTagLine = true
				break
			}
		}

		// Group lines into segments. A boundary sits between line i-1 and
		// line i when the previous line ends with a tag, the current line
		// starts with one, or (only in tag-bearing text) either line is
		// block content.
		var segments []string
		var current []string
		for i, line := range lines {
			boundary := false
			if i > 0 {
				prev := lines[i-1]
				boundary = LineEndsWithTag(prev) || LineStartsWithTag(line)
				if !boundary && hasTagLine {
					boundary = LineIsBlockContent(prev) || LineIsBlockContent(line)
				}
			}
			if boundary && len(current) > 0 {
				segments = append(segments, strings.Join(current, "\n"))
				current = current[:0]
			}
			current = append(current, line)
		}
		if len(current) > 0 {
			segments = append(segments, strings.Join(current, "\n"))
		}

		if len(segments) == 1 {
			return postProcessTags(base(text, initialIndent, subsequentIndent))
		}

		wrapped := make([]string, len(segments))
		for i, seg := range segments {
			indent := initialIndent
			if i > 0 {
				indent = subsequentIndent
			}
			wrapped[i] = base(seg, indent, subsequentIndent)
		}
		return postProcessTags(strings.Join(wrapped, "\n"))
	}
}

// postProcessTags applies the structural fixups that wrapping alone cannot
// express: splitting a closing tag off a multi-line opening tag, separating
// tag-only lines from block content with a blank line, and removing spurious
// indentation from closing-tag lines.
func postProcessTags(text string) string {
	if !strings.ContainsAny(text, "{<") {
		return text
	}
	text = FixMultilineOpeningTags(text)
	lines := strings.Split(text, "\n")
	lines = insertBlankLinesAroundBlocks(lines)
	for i, line := range lines {
		if lineIsClosingTagOnly(line) {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// FixMultilineOpeningTags splits a closing tag onto its own line when it
// shares a line with the closing delimiter of a multi-line opening tag.
// The host parser corrupts that pattern (`...required=true %}{% /field %}`
// where `{% field` opened on an earlier line); single-line paired tags like
// `{% field %}{% /field %}` are left alone.
func FixMultilineOpeningTags(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		out = append(out, splitTrailingClosingTag(line)...)
	}
	return strings.Join(out, "\n")
}

func splitTrailingClosingTag(line string) []string {
	for _, f := range tagFamilies {
		adj := f.close + f.open
		from := 0
		for {
			rel := strings.Index(line[from:], adj)
			if rel < 0 {
				break
			}
			i := from + rel
			rest := line[i+len(adj):]
			if !strings.HasPrefix(strings.TrimLeft(rest, " \t"), "/") {
				from = i + len(adj)
				continue
			}
			// Only a problem when the opening tag began on an earlier
			// line, i.e. its opening delimiter is not on this line.
			if strings.Contains(line[:i], f.open) {
				from = i + len(adj)
				continue
			}
			head := line[:i+len(f.close)]
			tail := line[i+len(f.close):]
			return append([]string{head}, splitTrailingClosingTag(tail)...)
		}
	}
	return []string{line}
}

// insertBlankLinesAroundBlocks inserts a blank line between a tag-only line
// and adjacent block content. Without it the host grammar's lazy-continuation
// rule absorbs the tag into the list or table structure.
func insertBlankLinesAroundBlocks(lines []string) []string {
	var out []string
	for i, line := range lines {
		if i > 0 {
			prev := lines[i-1]
			needBlank := (lineIsTagOnly(prev) && LineIsBlockContent(line)) ||
				(LineIsBlockContent(prev) && lineIsTagOnly(line))
			if needBlank && strings.TrimSpace(prev) != "" && strings.TrimSpace(line) != "" {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}
	return out
}
