// Package markdown normalizes Markdown documents: paragraphs are
// rewrapped to a target width (optionally one sentence per line),
// headings and lists are canonicalized, indented code becomes fenced,
// and tables and HTML pass through from the source. The output is
// stable, so repeated runs produce identical text and edits diff
// cleanly.
package markdown

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/flowmark/flowmark/pkg/linewrap"
	"github.com/flowmark/flowmark/pkg/sections"
	"github.com/flowmark/flowmark/pkg/typography"
)

// ListSpacing controls blank lines between list items.
type ListSpacing string

const (
	// SpacingPreserve keeps each list the way the source had it: loose
	// lists stay loose, tight lists stay tight.
	SpacingPreserve ListSpacing = "preserve"
	// SpacingLoose puts a blank line between all list items.
	SpacingLoose ListSpacing = "loose"
	// SpacingTight removes blank lines between list items.
	SpacingTight ListSpacing = "tight"
)

type config struct {
	width       int
	minLineLen  int
	semantic    bool
	smartQuotes bool
	ellipses    bool
	cleanups    bool
	renumber    bool
	spacing     ListSpacing
}

// Option configures Fill.
type Option func(*config)

// WithWidth sets the wrap width. Zero or negative disables wrapping, so
// each paragraph becomes a single line.
func WithWidth(w int) Option {
	return func(c *config) { c.width = w }
}

// WithSemantic wraps with one sentence per line (lines shorter than the
// minimum fold into the next sentence) instead of filling to the width.
func WithSemantic() Option {
	return func(c *config) { c.semantic = true }
}

// WithSmartQuotes converts straight quotes to typographic quotes in
// prose.
func WithSmartQuotes() Option {
	return func(c *config) { c.smartQuotes = true }
}

// WithEllipses converts "..." to the ellipsis character in prose.
func WithEllipses() Option {
	return func(c *config) { c.ellipses = true }
}

// WithCleanups enables structural cleanups, currently converting a
// top-level paragraph that is entirely bold into an H2 heading.
func WithCleanups() Option {
	return func(c *config) { c.cleanups = true }
}

// WithRenumber renumbers section headings when the document follows a
// recognizable numbering convention.
func WithRenumber() Option {
	return func(c *config) { c.renumber = true }
}

// WithListSpacing sets blank-line handling between list items.
func WithListSpacing(s ListSpacing) Option {
	return func(c *config) { c.spacing = s }
}

func newConfig(opts []Option) config {
	c := config{
		width:      linewrap.DefaultWrapWidth,
		minLineLen: linewrap.DefaultMinLineLen,
		spacing:    SpacingPreserve,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) wrapper() linewrap.LineWrapper {
	if c.semantic {
		return linewrap.AddTagNewlineHandling(
			linewrap.LineWrapBySentence(c.width, c.minLineLen, nil, linewrap.WithMarkdown()))
	}
	return linewrap.AddTagNewlineHandling(
		linewrap.LineWrapToWidth(c.width, linewrap.WithMarkdown()))
}

var mdParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// Fill parses src as GFM Markdown and renders it back in normalized
// form with exactly one trailing newline.
func Fill(src string, opts ...Option) string {
	cfg := newConfig(opts)
	source := []byte(src)
	ctx := parser.NewContext()
	doc := mdParser.Parse(text.NewReader(source), parser.WithContext(ctx))

	r := &renderer{src: source, cfg: cfg, wrap: cfg.wrapper()}
	if cfg.renumber {
		r.renumberSections(doc)
	}
	lines := r.children(doc, "", "")

	// The parser consumes link reference definitions; re-emit them as a
	// final block so reference-style links keep resolving.
	if refs := referenceDefinitions(ctx); len(refs) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, refs...)
	}

	out := strings.Join(lines, "\n")
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func referenceDefinitions(ctx parser.Context) []string {
	var out []string
	for _, ref := range ctx.References() {
		line := "[" + string(ref.Label()) + "]: " + string(ref.Destination())
		if title := ref.Title(); len(title) > 0 {
			line += ` "` + string(title) + `"`
		}
		out = append(out, line)
	}
	return out
}

type renderer struct {
	src  []byte
	cfg  config
	wrap linewrap.LineWrapper

	// renumbered text per heading node, from the renumber prepass
	headings map[*ast.Heading]string
}

// children renders the child blocks of n, separating siblings with one
// blank line. Inside quotes the "blank" line keeps the quote prefix.
func (r *renderer) children(n ast.Node, first, rest string) []string {
	sep := strings.TrimRight(rest, " ")
	var out []string
	fi := first
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		lines := r.block(c, fi, rest)
		if len(lines) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, sep)
		}
		out = append(out, lines...)
		fi = rest
	}
	return out
}

func (r *renderer) block(n ast.Node, first, rest string) []string {
	switch n := n.(type) {
	case *ast.Heading:
		return r.heading(n, first)
	case *ast.Paragraph:
		return r.paragraph(n, first, rest, true)
	case *ast.TextBlock:
		return r.paragraph(n, first, rest, true)
	case *ast.HTMLBlock:
		return r.htmlBlock(n, first, rest)
	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = string(n.Info.Segment.Value(r.src))
		}
		return r.fence(r.rawLines(n), info, first, rest)
	case *ast.CodeBlock:
		return r.fence(r.rawLines(n), "", first, rest)
	case *ast.ThematicBreak:
		return []string{first + "***"}
	case *ast.Blockquote:
		return r.children(n, first+"> ", rest+"> ")
	case *ast.List:
		return r.list(n, first, rest)
	case *extast.Table:
		return r.verbatim(n, first, rest, true)
	default:
		return r.verbatim(n, first, rest, false)
	}
}

func (r *renderer) heading(n *ast.Heading, first string) []string {
	txt, ok := r.headings[n]
	if !ok {
		txt = r.collapsedText(n)
	}
	txt = r.prose(txt)
	return []string{first + strings.Repeat("#", n.Level) + " " + txt}
}

// paragraph wraps prose. Lines that look like table rows are kept
// verbatim on their own lines; the GFM parser leaves a table inside a
// paragraph when no blank line precedes it, and reflowing those rows
// would destroy the table.
func (r *renderer) paragraph(n ast.Node, first, rest string, prose bool) []string {
	raw := r.rawLines(n)
	if len(raw) == 0 {
		return nil
	}
	if prose && r.cfg.cleanups && first == "" && rest == "" && len(raw) == 1 {
		if m, _ := boldParagraphRE.FindStringMatch(strings.TrimSpace(raw[0])); m != nil {
			return []string{"## " + r.prose(m.GroupByNumber(1).String())}
		}
	}

	var out []string
	var run []string
	fi := first
	flush := func() {
		if len(run) == 0 {
			return
		}
		txt := strings.Join(run, "\n")
		if prose {
			txt = r.prose(txt)
		}
		out = append(out, strings.Split(r.wrap(txt, fi, rest), "\n")...)
		fi = rest
		run = run[:0]
	}
	for _, line := range raw {
		if linewrap.LineIsTableRow(line) {
			flush()
			out = append(out, fi+strings.TrimSpace(line))
			fi = rest
		} else {
			run = append(run, line)
		}
	}
	flush()
	return out
}

func (r *renderer) htmlBlock(n *ast.HTMLBlock, first, rest string) []string {
	raw := r.rawLines(n)
	if n.HasClosure() {
		raw = append(raw, strings.TrimRight(string(n.ClosureLine.Value(r.src)), "\r\n"))
	}
	if len(raw) == 0 {
		return nil
	}
	// A comment block ends, on reparse, at the first line containing
	// "-->". Wrapping content that trails the closing marker would push
	// it onto lines outside the block, so such blocks pass through
	// unwrapped.
	if strings.HasPrefix(strings.TrimSpace(raw[0]), "<!--") && trailsCommentClose(raw[len(raw)-1]) {
		out := make([]string, len(raw))
		for i, l := range raw {
			if i == 0 {
				out[i] = first + l
			} else {
				out[i] = rest + l
			}
		}
		return out
	}
	return strings.Split(r.wrap(strings.Join(raw, "\n"), first, rest), "\n")
}

// trailsCommentClose reports whether non-whitespace content follows the
// "-->" on the given line.
func trailsCommentClose(line string) bool {
	i := strings.Index(line, "-->")
	return i >= 0 && strings.TrimSpace(line[i+3:]) != ""
}

// fence emits a fenced code block, converting indented code as well.
// Blank code lines carry no trailing prefix whitespace.
func (r *renderer) fence(code []string, info, first, rest string) []string {
	fence := "```"
	for _, l := range code {
		for strings.Contains(l, fence) {
			fence += "`"
		}
	}
	out := make([]string, 0, len(code)+2)
	out = append(out, first+fence+info)
	blank := strings.TrimRight(rest, " ")
	for _, l := range code {
		if l == "" {
			out = append(out, blank)
		} else {
			out = append(out, rest+l)
		}
	}
	return append(out, rest+fence)
}

func (r *renderer) list(n *ast.List, first, rest string) []string {
	loose := !n.IsTight
	switch r.cfg.spacing {
	case SpacingLoose:
		loose = true
	case SpacingTight:
		loose = false
	}

	var out []string
	num := n.Start
	fi := first
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		var marker string
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + string(rune(n.Marker)) + " "
			num++
		} else {
			marker = string(rune(n.Marker)) + " "
		}
		cont := strings.Repeat(" ", len(marker))
		lines := r.children(item, fi+marker, rest+cont)
		if len(lines) == 0 {
			lines = []string{strings.TrimRight(fi+marker, " ")}
		}
		if len(out) > 0 && loose {
			out = append(out, strings.TrimRight(rest, " "))
		}
		out = append(out, lines...)
		fi = rest
	}
	return out
}

// verbatim emits a block from its raw source lines, located by the
// extremes of its leaf segments. Used for tables and as the fallback
// for block kinds with no dedicated rendering.
func (r *renderer) verbatim(n ast.Node, first, rest string, trimToPipe bool) []string {
	start, stop, ok := sourceSpan(n)
	if !ok {
		return nil
	}
	for start > 0 && r.src[start-1] != '\n' {
		start--
	}
	for stop < len(r.src) && r.src[stop] != '\n' {
		stop++
	}
	lines := strings.Split(string(r.src[start:stop]), "\n")
	out := make([]string, 0, len(lines))
	fi := first
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if trimToPipe {
			if i := strings.IndexByte(l, '|'); i >= 0 && strings.TrimSpace(l[:i]) == "" {
				l = l[i:]
			} else {
				l = strings.TrimLeft(l, " \t")
			}
		}
		out = append(out, fi+l)
		fi = rest
	}
	return out
}

func sourceSpan(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	note := func(s, e int) {
		if start < 0 || s < start {
			start = s
		}
		if e > stop {
			stop = e
		}
	}
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			note(t.Segment.Start, t.Segment.Stop)
		case *ast.RawHTML:
			for i := 0; i < t.Segments.Len(); i++ {
				s := t.Segments.At(i)
				note(s.Start, s.Stop)
			}
		default:
			if node.Type() == ast.TypeBlock {
				lines := node.Lines()
				if lines != nil && lines.Len() > 0 {
					note(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return start, stop, stop >= 0
}

func (r *renderer) rawLines(n ast.Node) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(r.src)), "\r\n"))
	}
	return out
}

func (r *renderer) collapsedText(n ast.Node) string {
	return strings.Join(strings.Fields(strings.Join(r.rawLines(n), " ")), " ")
}

func (r *renderer) prose(txt string) string {
	txt = NormalizeStrikethrough(txt)
	if r.cfg.smartQuotes {
		txt = typography.SmartQuotes(txt)
	}
	if r.cfg.ellipses {
		txt = typography.Ellipses(txt)
	}
	return txt
}

func (r *renderer) renumberSections(doc ast.Node) {
	var nodes []*ast.Heading
	var hs []sections.Heading
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, isHeading := node.(*ast.Heading); entering && isHeading {
			nodes = append(nodes, h)
			hs = append(hs, sections.Heading{Level: h.Level, Text: r.collapsedText(h)})
		}
		return ast.WalkContinue, nil
	})
	renumbered := sections.RenumberHeadings(hs)
	r.headings = make(map[*ast.Heading]string, len(nodes))
	for i, h := range nodes {
		r.headings[h] = renumbered[i].Text
	}
}

// boldParagraphRE matches a paragraph that is one bold span and nothing
// else, with no internal bold delimiters.
var boldParagraphRE = regexp2.MustCompile(`^\*\*((?:[^*]|\*(?!\*))+)\*\*$`, regexp2.None)

// singleTildeRE matches a GFM single-tilde strikethrough span with the
// standard flanking rules, so "~60 seconds, ~130 words" stays literal.
var singleTildeRE = regexp2.MustCompile(
	`(?<=^|[\s\p{P}])(?<!\\)~(?=\S)((?:(?!~).)+?)(?<=\S)~(?=$|[\s\p{P}])`,
	regexp2.None)

// NormalizeStrikethrough rewrites single-tilde strikethrough spans to
// the canonical double-tilde form. Code spans and template tags are
// left untouched.
func NormalizeStrikethrough(txt string) string {
	if !strings.Contains(txt, "~") {
		return txt
	}
	arena, sub := linewrap.ExtractProtected(txt)
	replaced, err := singleTildeRE.Replace(sub, "~~$1~~", -1, -1)
	if err != nil {
		replaced = sub
	}
	return linewrap.RestoreProtected(replaced, arena)
}
