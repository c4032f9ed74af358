// Package sections detects numbered-heading conventions in Markdown
// documents and renumbers headings to restore sequential order.
//
// A heading level qualifies for renumbering when its first two headings
// carry matching numeric prefixes, at least two headings at the level are
// numbered, and numbered headings make up at least two thirds of the
// level. Numbered levels must be contiguous from H1, except that a lone
// H1 acting as the document title lets H2 and deeper number on their own.
// Trailing separators are normalized to periods and unnumbered headings
// pass through unchanged.
package sections

import (
	"fmt"
	"strings"
)

const maxLevels = 6

// Heading is one document heading: ATX level (1-6) and the heading text
// without the leading hashes.
type Heading struct {
	Level int
	Text  string
}

// FormatComponent is one piece of a section number, e.g. the "2" of "1.2".
type FormatComponent struct {
	Level int // 1-6, which heading level's counter this component shows
	Style NumberStyle
}

// NumFormat is the inferred number format for one heading level.
type NumFormat struct {
	Components []FormatComponent
	Trailing   string // character after the final component, "." or ")" or ""
}

// FormatString renders the format as a template like "{h1:arabic}.".
func (f *NumFormat) FormatString() string {
	parts := make([]string, len(f.Components))
	for i, c := range f.Components {
		parts[i] = fmt.Sprintf("{h%d:%s}", c.Level, c.Style)
	}
	return strings.Join(parts, ".") + f.Trailing
}

// FormatCounters renders the given per-level counters in this format,
// e.g. counters {2, 3, ...} with an H2 format gives "2.3".
func (f *NumFormat) FormatCounters(counters [maxLevels]int) string {
	parts := make([]string, len(f.Components))
	for i, c := range f.Components {
		parts[i] = FormatNumber(c.Style, counters[c.Level-1])
	}
	return strings.Join(parts, ".") + f.Trailing
}

// Convention holds the inferred number format per heading level.
// A nil entry means the level is not numbered.
type Convention struct {
	Levels [maxLevels]*NumFormat
}

// MaxDepth is the deepest numbered level (1-6), or 0 when none.
func (c Convention) MaxDepth() int {
	for i := maxLevels - 1; i >= 0; i-- {
		if c.Levels[i] != nil {
			return i + 1
		}
	}
	return 0
}

// IsActive reports whether the document qualifies for renumbering.
func (c Convention) IsActive() bool {
	return c.MaxDepth() >= 1
}

func (c Convention) String() string {
	var parts []string
	for i, f := range c.Levels {
		if f != nil {
			parts = append(parts, fmt.Sprintf("H%d: %s", i+1, f.FormatString()))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Prefix is a recognized section number at the start of a heading.
type Prefix struct {
	Components []string
	Styles     []NumberStyle
	Trailing   string
	Title      string
}

// ExtractPrefix parses a section number prefix from heading text,
// e.g. "1.2 Details" or "II.A Overview" or "3) End". Returns nil when
// the heading does not start with a recognized prefix.
func ExtractPrefix(text string) *Prefix {
	head, title, ok := strings.Cut(text, " ")
	if !ok || head == "" || title == "" {
		return nil
	}

	trailing := ""
	if strings.HasSuffix(head, ".") || strings.HasSuffix(head, ")") {
		trailing = head[len(head)-1:]
		head = head[:len(head)-1]
	}
	if head == "" {
		return nil
	}

	parts := strings.Split(head, ".")
	p := &Prefix{Trailing: trailing, Title: title}
	for _, part := range parts {
		if !isComponent(part) {
			return nil
		}
		p.Components = append(p.Components, part)
		p.Styles = append(p.Styles, InferStyle(part))
	}
	return p
}

// isComponent reports whether part looks like one section number
// component: digits, a Roman numeral, or a short alphabetic counter.
// Ordinary words ("The", "Chapter") are rejected so prose headings are
// never mistaken for numbering.
func isComponent(s string) bool {
	if isDigits(s) {
		return true
	}
	if !isLetters(s) || (s != strings.ToUpper(s) && s != strings.ToLower(s)) {
		return false
	}
	return isRomanChars(s) || len(s) <= 2
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

// InferFormatForLevel infers the number format for one heading level, or
// nil when the level does not qualify: the first two headings at the
// level must both carry prefixes with the same shape and styles, at
// least two headings must be numbered, and numbered headings must be at
// least two thirds of the level.
func InferFormatForLevel(headings []Heading, level int) *NumFormat {
	var atLevel []string
	for _, h := range headings {
		if h.Level == level {
			atLevel = append(atLevel, h.Text)
		}
	}
	if len(atLevel) < 2 {
		return nil
	}

	var prefixes []*Prefix
	for _, text := range atLevel {
		if p := ExtractPrefix(text); p != nil {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) < 2 {
		return nil
	}
	first, second := ExtractPrefix(atLevel[0]), ExtractPrefix(atLevel[1])
	if first == nil || second == nil {
		return nil
	}
	if len(first.Components) != len(second.Components) {
		return nil
	}
	for i := range first.Styles {
		if styleClass(first.Styles[i]) != styleClass(second.Styles[i]) {
			return nil
		}
	}
	if 3*len(prefixes) < 2*len(atLevel) {
		return nil
	}

	// Single letters are ambiguous between Roman and alphabetic ("C"
	// could be either). A position reads as Roman only when every letter
	// component there is a valid Roman numeral; one A or b makes the
	// whole level alphabetic.
	styles := append([]NumberStyle(nil), first.Styles...)
	for pos, style := range styles {
		if style == StyleArabic {
			continue
		}
		roman := true
		for _, p := range prefixes {
			if pos < len(p.Components) && !isRomanChars(p.Components[pos]) {
				roman = false
				break
			}
		}
		switch {
		case roman && styleClass(style) == classUpper:
			styles[pos] = StyleRomanUpper
		case roman:
			styles[pos] = StyleRomanLower
		case styleClass(style) == classUpper:
			styles[pos] = StyleAlphaUpper
		default:
			styles[pos] = StyleAlphaLower
		}
	}

	f := &NumFormat{Trailing: first.Trailing}
	base := level - len(styles) + 1
	for i, style := range styles {
		f.Components = append(f.Components, FormatComponent{Level: base + i, Style: style})
	}
	return f
}

// InferConvention infers the numbering convention across all levels.
func InferConvention(headings []Heading) Convention {
	var conv Convention
	for level := 1; level <= maxLevels; level++ {
		conv.Levels[level-1] = InferFormatForLevel(headings, level)
	}
	return conv
}

// ApplyHierarchicalConstraint drops numbering for levels that are not
// contiguous from H1. When headings contain exactly one H1, that H1 is
// treated as a document title and contiguity is checked from H2 instead.
func ApplyHierarchicalConstraint(conv Convention, headings []Heading) Convention {
	start := 0
	if len(headings) > 0 {
		h1Count := 0
		for _, h := range headings {
			if h.Level == 1 {
				h1Count++
			}
		}
		if h1Count == 1 {
			start = 1
		}
	}

	var out Convention
	for i := start; i < maxLevels; i++ {
		if conv.Levels[i] == nil {
			break
		}
		out.Levels[i] = conv.Levels[i]
	}
	return out
}

// NormalizeConvention normalizes trailing separators: single-component
// formats get a trailing period, multi-component (decimal) formats get
// none.
func NormalizeConvention(conv Convention) Convention {
	var out Convention
	for i, f := range conv.Levels {
		if f == nil {
			continue
		}
		norm := &NumFormat{Components: f.Components}
		if len(f.Components) == 1 {
			norm.Trailing = "."
		}
		out.Levels[i] = norm
	}
	return out
}
