// Package linewrap implements construct-aware line wrapping for Markdown and
// plaintext. It keeps atomic constructs (inline code spans, Markdown links,
// template tags, HTML tags and comments) intact across line breaks, and
// preserves the structural newlines that template tags and block content
// (tables, lists) require.
package linewrap

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Delimiters for the supported tag families.
//
// Template tags cover Markdoc, Markform, Jinja and Nunjucks style syntax:
// {% tag %}, {% /tag %}, {# comment #}, {{ variable }}. HTML comments are
// <!-- tag --> and <!-- /tag -->.
const (
	TagOpen          = "{%"
	TagClose         = "%}"
	CommentOpen      = "{#"
	CommentClose     = "#}"
	VarOpen          = "{{"
	VarClose         = "}}"
	HTMLCommentOpen  = "<!--"
	HTMLCommentClose = "-->"
)

// tagFamily is one open/close delimiter pair.
type tagFamily struct {
	open  string
	close string
}

// tagFamilies lists every delimiter pair, used by the line predicates and the
// adjacency normalizer.
var tagFamilies = []tagFamily{
	{TagOpen, TagClose},
	{CommentOpen, CommentClose},
	{VarOpen, VarClose},
	{HTMLCommentOpen, HTMLCommentClose},
}

// AtomicPattern names a regex for one kind of atomic construct. The construct
// matched by the pattern is never broken across a line break.
type AtomicPattern struct {
	Name    string
	Pattern string
}

func pairedTagPattern(openRE, closeRE, middleExclude string) string {
	// The (?!\s*/) lookahead keeps the first tag from matching a closing tag.
	return openRE + `(?!\s*/)[^` + middleExclude + `]*` + closeRE +
		`\s*` +
		openRE + `\s*/[^` + middleExclude + `]*` + closeRE
}

func singleTagPattern(openRE, closeRE string) string {
	return openRE + `.*?` + closeRE
}

// AtomicPatterns is the priority-ordered table of atomic constructs. Order
// matters: more specific patterns come first, and paired tag patterns must
// precede single tag patterns or a paired construct is mis-split into two
// independent single matches.
var AtomicPatterns = []AtomicPattern{
	// Inline code spans, including multi-backtick spans like ``code``.
	{Name: "inline_code_span", Pattern: "(`+)(?:(?!\\1).)+\\1"},
	// Markdown links: [text](url), [text][ref], or bare [text].
	{Name: "markdown_link", Pattern: `\[[^\]]*\](?:\([^)]*\)|\[[^\]]*\])?`},
	// Paired tags: opening immediately followed by its closer.
	{Name: "paired_template_tag", Pattern: pairedTagPattern(`\{%`, `%\}`, `%`)},
	{Name: "paired_template_comment", Pattern: pairedTagPattern(`\{#`, `#\}`, `#`)},
	{Name: "paired_template_var", Pattern: pairedTagPattern(`\{\{`, `\}\}`, `}`)},
	{Name: "paired_html_comment", Pattern: `<!--(?!\s*/)[^-]*(?:-[^-]+)*-->\s*<!--\s*/[^-]*(?:-[^-]+)*-->`},
	// Single tags.
	{Name: "single_template_tag", Pattern: singleTagPattern(`\{%`, `%\}`)},
	{Name: "single_template_comment", Pattern: singleTagPattern(`\{#`, `#\}`)},
	{Name: "single_template_var", Pattern: singleTagPattern(`\{\{`, `\}\}`)},
	{Name: "single_html_comment", Pattern: singleTagPattern(`<!--`, `-->`)},
	// HTML/XML tags.
	{Name: "html_open_tag", Pattern: `<[a-zA-Z][^>]*>`},
	{Name: "html_close_tag", Pattern: `</[a-zA-Z][^>]*>`},
}

// atomicConstructRE is the alternation of every atomic pattern, compiled once
// at startup. regexp2 is required because the code-span pattern uses a
// backreference and the paired-tag patterns use negative lookahead, neither of
// which RE2 supports. Singleline makes `.` match newlines, so constructs that
// span lines (multi-line tags) still match.
var atomicConstructRE = regexp2.MustCompile(joinPatterns(AtomicPatterns), regexp2.Singleline)

// protectedRE matches code spans, template tags and HTML tags/comments, but
// not Markdown links. It backs the tag-namespace extraction used by
// post-processing layers (typography) that must leave tag attribute text and
// code untouched while still transforming link text.
var protectedRE = regexp2.MustCompile(
	joinPatterns(append([]AtomicPattern{AtomicPatterns[0]}, AtomicPatterns[2:]...)),
	regexp2.Singleline,
)

func joinPatterns(patterns []AtomicPattern) string {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = p.Pattern
	}
	return strings.Join(parts, "|")
}
