// Package typography rewrites straight quotes and dot sequences in prose into
// their typographic forms. Template tags, HTML tags and comments, and inline
// code spans are protected: text inside them is never modified, so quotes in
// tag attributes and code stay straight.
package typography

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/flowmark/flowmark/pkg/linewrap"
)

const (
	leftDouble  = "“"
	rightDouble = "”"
	leftSingle  = "‘"
	rightSingle = "’"
	apostrophe  = "’"
	ellipsis    = "…"
)

// Quote pair rules. A pair converts only when it is unambiguous: the opening
// quote follows start-of-text or whitespace, the content starts and ends on a
// non-space character, and the closing quote is followed by whitespace,
// end-of-text, or trailing punctuation. Anything else (nested quotes, quotes
// glued to identifiers, escaped quotes) is left alone.
var (
	trailingPunct = `[\s.,;:!?)\]` + "–—" + `-]|$`

	doublePairRE = regexp2.MustCompile(
		`(?<=^|\s)"([^"\s](?:[^"]*[^"\s])?)"(?=`+trailingPunct+`)`,
		regexp2.None)
	singlePairRE = regexp2.MustCompile(
		`(?<=^|\s)'([A-Za-z](?:[^']*[^'\s])?)'(?=`+trailingPunct+`)`,
		regexp2.None)

	// Contractions: an apostrophe between letters converts only before a
	// recognized contraction suffix (don't, I'm, it'll, we've, they're,
	// she'd, Jill's). An apostrophe inside an arbitrary compound like
	// Blah'blah'blah stays straight.
	contractionRE = regexp2.MustCompile(
		`(?<=[A-Za-z])'(?=(?:s|t|m|d|ll|re|ve)\b)`,
		regexp2.IgnoreCase)

	// Possessive after a word ending in s (James', the students' books).
	// The word must stand on its own, preceded by start or whitespace.
	possessiveRE = regexp2.MustCompile(
		`(?<=(?:^|\s)[A-Za-z]+s)'(?=$|[\s.,;:!?)\]])`,
		regexp2.None)

	blankLineRE = regexp.MustCompile(`\n[ \t]*\n`)
)

// replacePair converts one quote pair rule, skipping spans that cross a
// paragraph break.
func replacePair(re *regexp2.Regexp, text, left, right string) string {
	out, err := re.ReplaceFunc(text, func(m regexp2.Match) string {
		content := m.GroupByNumber(1).String()
		if blankLineRE.MatchString(content) {
			return m.String()
		}
		return left + content + right
	}, -1, -1)
	if err != nil {
		return text
	}
	return out
}

func replaceAll(re *regexp2.Regexp, text, repl string) string {
	out, err := re.Replace(text, repl, -1, -1)
	if err != nil {
		return text
	}
	return out
}

// SmartQuotes converts straight quotes in prose to typographic quotes and
// apostrophes. Conversion is conservative: ambiguous patterns are left
// unchanged, and text inside template tags, HTML tags/comments and code spans
// is never touched.
func SmartQuotes(text string) string {
	if !strings.ContainsAny(text, `"'`) {
		return text
	}
	arena, prose := linewrap.ExtractProtected(text)

	prose = replacePair(doublePairRE, prose, leftDouble, rightDouble)
	prose = replacePair(singlePairRE, prose, leftSingle, rightSingle)
	prose = replaceAll(contractionRE, prose, apostrophe)
	prose = replaceAll(possessiveRE, prose, apostrophe)

	return linewrap.RestoreProtected(prose, arena)
}

var (
	dotsRE       = regexp.MustCompile(`\.\.\.+`)
	tightAfterRE = regexp.MustCompile(ellipsis + `([\p{L}\p{N}])`)
	spaceBeforeRE = regexp.MustCompile(`[ \t]+` + ellipsis)
)

// Ellipses converts runs of three or more dots to the ellipsis character and
// normalizes the spacing around it. Protected spans are never touched.
func Ellipses(text string) string {
	if !strings.Contains(text, "...") {
		return text
	}
	arena, prose := linewrap.ExtractProtected(text)

	prose = dotsRE.ReplaceAllString(prose, ellipsis)
	prose = spaceBeforeRE.ReplaceAllString(prose, " "+ellipsis)
	prose = tightAfterRE.ReplaceAllString(prose, ellipsis+" $1")

	return linewrap.RestoreProtected(prose, arena)
}
