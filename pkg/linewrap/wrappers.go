package linewrap

import (
	"regexp"
	"strings"
)

// DefaultMinLineLen is the minimum length below which a sentence line is
// folded into the following sentence during semantic wrapping.
const DefaultMinLineLen = 20

// LineWrapper wraps text with the given initial and subsequent indents and
// returns the wrapped string.
type LineWrapper func(text, initialIndent, subsequentIndent string) string

// hardBreakRE matches explicit Markdown hard line breaks: a backslash or two
// or more trailing spaces before the newline.
var hardBreakRE = regexp.MustCompile(`(?:\\|[ ]{2,})\n`)

// withHardBreaks splits on explicit hard line breaks, wraps each piece
// independently, and rejoins with the normalized backslash form.
func withHardBreaks(wrap LineWrapper) LineWrapper {
	return func(text, initialIndent, subsequentIndent string) string {
		segs := hardBreakRE.Split(text, -1)
		if len(segs) == 1 {
			return wrap(text, initialIndent, subsequentIndent)
		}
		out := make([]string, len(segs))
		for i, seg := range segs {
			indent := initialIndent
			if i > 0 {
				indent = subsequentIndent
			}
			out[i] = wrap(seg, indent, subsequentIndent)
		}
		return strings.Join(out, "\\\n")
	}
}

// LineWrapToWidth returns a LineWrapper that fills text to the given width.
// In Markdown mode (WithMarkdown) explicit hard line breaks are preserved and
// normalized to backslash-newline.
func LineWrapToWidth(width int, opts ...Option) LineWrapper {
	c := newWrapConfig(opts)
	base := func(text, initialIndent, subsequentIndent string) string {
		return WrapParagraph(text, width, initialIndent, subsequentIndent, opts...)
	}
	if c.markdown {
		return withHardBreaks(base)
	}
	return base
}

// LineWrapBySentence returns a LineWrapper that keeps each sentence on its
// own line (semantic line breaks), wrapping sentences longer than width. A
// line shorter than minLineLen is folded together with the following
// sentence's first line. A nil split uses SplitSentences.
func LineWrapBySentence(width, minLineLen int, split SentenceSplitter, opts ...Option) LineWrapper {
	if split == nil {
		split = SplitSentences
	}
	c := newWrapConfig(opts)

	wrapper := func(text, initialIndent, subsequentIndent string) string {
		text = strings.ReplaceAll(text, "\n", " ")
		iiLen := c.lenFn(initialIndent)
		siLen := c.lenFn(subsequentIndent)

		var lines []string
		firstLine := true
		for _, sentence := range split(text) {
			column := siLen
			if firstLine {
				column = iiLen
			}
			if n := len(lines); n > 0 && c.lenFn(lines[n-1]) < minLineLen {
				column += c.lenFn(lines[n-1])
			}

			segOpts := append(append([]Option{}, opts...),
				WithInitialColumn(column),
				WithSubsequentOffset(siLen),
			)
			wrapped := WrapParagraphLines(sentence, width, segOpts...)

			// Fold a too-short previous line together with this
			// sentence's first line when the pair still fits.
			if n := len(lines); n > 0 && len(wrapped) > 0 {
				last := lines[n-1]
				if c.lenFn(last) < minLineLen && c.lenFn(last)+1+c.lenFn(wrapped[0]) <= width {
					lines[n-1] = last + " " + wrapped[0]
					wrapped = wrapped[1:]
				}
			}
			lines = append(lines, wrapped...)
			firstLine = false
		}

		if initialIndent != "" && len(lines) > 0 {
			lines[0] = initialIndent + lines[0]
		}
		if subsequentIndent != "" && len(lines) > 1 {
			for i := 1; i < len(lines); i++ {
				lines[i] = subsequentIndent + lines[i]
			}
		}
		return DenormalizeAdjacentTags(strings.Join(lines, "\n"))
	}

	if c.markdown {
		return withHardBreaks(wrapper)
	}
	return wrapper
}
