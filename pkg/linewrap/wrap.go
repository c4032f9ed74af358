package linewrap

import (
	"regexp"
	"strings"
)

// DefaultWrapWidth is the default target column for wrapping.
const DefaultWrapWidth = 88

var whitespaceRE = regexp.MustCompile(`\s+`)

// Words that need escaping when they start a wrapped (non-initial) Markdown
// line: bare list markers, heading markers, blockquote markers, and numbered
// list markers. Without the escape the continuation line would be
// reinterpreted as new block structure.
var (
	mdSpecialsRE = regexp.MustCompile(`^([-*+>]|#+)$`)
	mdNumeralRE  = regexp.MustCompile(`^[0-9]+[.)]$`)
)

// MarkdownEscapeWord prepends a backslash to a word that would otherwise read
// as Markdown block structure at the start of a wrapped line. For numbered
// list markers ("1.", "1)") the backslash is inserted before the dot or paren.
func MarkdownEscapeWord(word string) string {
	if mdNumeralRE.MatchString(word) {
		return word[:len(word)-1] + `\` + word[len(word)-1:]
	}
	if mdSpecialsRE.MatchString(word) {
		return `\` + word
	}
	return word
}

type wrapConfig struct {
	initialColumn    int
	subsequentOffset int
	lenFn            LenFunc
	markdown         bool
	tags             TagWrapping
	splitter         WordSplitter
}

// Option configures the paragraph wrapper.
type Option func(*wrapConfig)

// WithInitialColumn sets the column the first line starts at (text already
// emitted on that line, e.g. a list marker).
func WithInitialColumn(col int) Option {
	return func(c *wrapConfig) { c.initialColumn = col }
}

// WithSubsequentOffset sets the column continuation lines start at.
func WithSubsequentOffset(off int) Option {
	return func(c *wrapConfig) { c.subsequentOffset = off }
}

// WithLenFunc sets the width-measurement function. The default counts runes;
// see VisibleWidth and DisplayWidth for alternatives.
func WithLenFunc(fn LenFunc) Option {
	return func(c *wrapConfig) { c.lenFn = fn }
}

// WithMarkdown enables Markdown mode: continuation-line escaping and hard
// line break preservation in the line wrappers.
func WithMarkdown() Option {
	return func(c *wrapConfig) { c.markdown = true }
}

// WithTagWrapping sets the template tag handling mode (default TagsAtomic).
func WithTagWrapping(tags TagWrapping) Option {
	return func(c *wrapConfig) { c.tags = tags }
}

// WithSplitter overrides the word splitter entirely.
func WithSplitter(s WordSplitter) Option {
	return func(c *wrapConfig) { c.splitter = s }
}

func newWrapConfig(opts []Option) wrapConfig {
	c := wrapConfig{
		lenFn: RuneLen,
		tags:  TagsAtomic,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.splitter == nil {
		c.splitter = HTMLMDWordSplitter(c.tags)
	}
	return c
}

// WrapParagraphLines wraps a single paragraph, returning the wrapped lines
// without indents applied. Whitespace is normalized to single spaces. No line
// exceeds width except a line holding a single atom wider than width, which
// is emitted alone and never split. A width <= 0 disables wrapping and
// returns the whitespace-normalized text as one line (or none if empty).
func WrapParagraphLines(text string, width int, opts ...Option) []string {
	c := newWrapConfig(opts)

	if width <= 0 {
		text = strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
		if text == "" {
			return nil
		}
		return []string{text}
	}

	text = whitespaceRE.ReplaceAllString(text, " ")
	words := c.splitter(text)

	var lines []string
	var current []string
	column := c.initialColumn
	firstLine := true

	for _, word := range words {
		wordWidth := c.lenFn(word)
		spaceWidth := 0
		if len(current) > 0 {
			spaceWidth = 1
		}
		if column+wordWidth+spaceWidth <= width {
			current = append(current, word)
			column += wordWidth + spaceWidth
			continue
		}

		if len(current) > 0 {
			lines = append(lines, strings.TrimSpace(strings.Join(current, " ")))
			firstLine = false
		}

		// A word opening a non-initial line may need Markdown escaping so
		// the wrapped line is not parsed as new block structure.
		if c.markdown && !firstLine {
			word = MarkdownEscapeWord(word)
			wordWidth = c.lenFn(word)
		}
		current = []string{word}
		column = c.subsequentOffset + wordWidth
	}

	if len(current) > 0 {
		lines = append(lines, strings.TrimSpace(strings.Join(current, " ")))
	}
	return lines
}

// WrapParagraph wraps a single paragraph and applies the given indents,
// returning the joined string. The initial indent counts against the first
// line's width and the subsequent indent against every later line's.
func WrapParagraph(text string, width int, initialIndent, subsequentIndent string, opts ...Option) string {
	c := newWrapConfig(opts)
	all := append(append([]Option{}, opts...),
		WithInitialColumn(c.initialColumn+c.lenFn(initialIndent)),
		WithSubsequentOffset(c.lenFn(subsequentIndent)),
	)
	lines := WrapParagraphLines(text, width, all...)

	if initialIndent != "" && c.initialColumn == 0 && len(lines) > 0 {
		lines[0] = initialIndent + lines[0]
	}
	if subsequentIndent != "" && len(lines) > 1 {
		for i := 1; i < len(lines); i++ {
			lines[i] = subsequentIndent + lines[i]
		}
	}

	// Restore original adjacency for paired tags (remove spaces inserted
	// during tokenization).
	return DenormalizeAdjacentTags(strings.Join(lines, "\n"))
}
