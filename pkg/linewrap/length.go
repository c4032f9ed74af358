package linewrap

import (
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/clipperhouse/displaywidth"
	"github.com/clipperhouse/uax29/v2/graphemes"
)

// LenFunc measures the width of a string for wrapping purposes.
type LenFunc func(s string) int

// RuneLen counts runes. This is the default measurement.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// GraphemeLen counts grapheme clusters, so combining sequences and
// emoji measure as one. Used for plain text where rune count would
// overestimate user-perceived length.
func GraphemeLen(s string) int {
	n := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		n++
	}
	return n
}

// VisibleWidth measures terminal width ignoring ANSI escape sequences, for
// callers wrapping colored text.
func VisibleWidth(s string) int {
	return ansi.StringWidth(s)
}

// DisplayWidth measures terminal cell width, accounting for wide (CJK,
// emoji) characters.
func DisplayWidth(s string) int {
	return displaywidth.String(s)
}
