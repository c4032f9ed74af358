package linewrap

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Placeholders substitute for protected substrings during tokenization. They
// are built from a control-byte prefix/suffix plus an arena index, so they can
// never collide with user content (NUL bytes do not occur in valid text).
//
// Two independent namespaces exist and must never be conflated: "AC" for
// atomic-construct extraction inside the wrapping engine, and "TG" for the
// tag-specific extraction used by post-processing layers.
const (
	atomicPrefix = "\x00AC"
	tagPrefix    = "\x00TG"
	suffix       = "\x00"
)

func encodePlaceholder(prefix string, idx int) string {
	return prefix + strconv.Itoa(idx) + suffix
}

// extract replaces every match of re with a fresh placeholder in encounter
// order, returning the arena of original substrings and the substituted text.
// Restoring the arena onto the substituted text reproduces the input exactly.
func extract(re *regexp2.Regexp, prefix, text string) ([]string, string) {
	var arena []string
	out, err := re.ReplaceFunc(text, func(m regexp2.Match) string {
		p := encodePlaceholder(prefix, len(arena))
		arena = append(arena, m.String())
		return p
	}, -1, -1)
	if err != nil {
		// The evaluator never fails and the patterns are compile-time
		// constants; a replace error here is unreachable.
		panic("linewrap: placeholder extraction failed: " + err.Error())
	}
	return arena, out
}

// restore substitutes arena entries back for placeholders of the given
// namespace. Restoration is an indexed lookup on the encoded index, not a
// search-and-replace, so original text that happens to contain an arena entry
// is never double-substituted.
func restore(prefix, text string, arena []string) string {
	if !strings.Contains(text, prefix) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for {
		i := strings.Index(text, prefix)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		rest := text[i+len(prefix):]
		end := strings.Index(rest, suffix)
		idx, err := strconv.Atoi(rest[:max(end, 0)])
		if end < 0 || err != nil || idx < 0 || idx >= len(arena) {
			// Not a placeholder this pass produced; emit verbatim. Valid
			// input cannot contain the control prefix, so this only guards
			// an internal contract violation.
			b.WriteString(text[i : i+len(prefix)])
			text = rest
			continue
		}
		b.WriteString(arena[idx])
		text = rest[end+len(suffix):]
	}
}

// extractAtomicConstructs replaces every atomic construct in text with an
// opaque placeholder from the atomic namespace.
func extractAtomicConstructs(text string) ([]string, string) {
	return extract(atomicConstructRE, atomicPrefix, text)
}

func restoreAtomicConstructs(tokens []string, arena []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = restore(atomicPrefix, tok, arena)
	}
	return out
}

// ExtractProtected replaces code spans, template tags and HTML tags/comments
// with placeholders from the tag namespace. It is the extraction used by
// post-processing transforms (typography) that must not touch tag attribute
// text or code while rewriting surrounding prose.
func ExtractProtected(text string) ([]string, string) {
	return extract(protectedRE, tagPrefix, text)
}

// RestoreProtected reverses ExtractProtected.
func RestoreProtected(text string, arena []string) string {
	return restore(tagPrefix, text, arena)
}
