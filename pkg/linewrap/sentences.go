package linewrap

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// SentenceSplitter splits text into sentences for semantic line wrapping.
type SentenceSplitter func(text string) []string

// sentenceBoundaryRE matches the whitespace between two sentences: a
// terminator preceded by a word character, closing bracket, or closing
// quote (so "`code`." does not end a sentence), not a single-capital
// initial like "J.", followed by a capital, digit, or opening
// quote/bracket.
var sentenceBoundaryRE = regexp2.MustCompile(
	`(?<=[\w)\]"'`+"’”"+`][.!?…]|[.!?…]["'`+"’”"+`])(?<![A-Z][.!?])\s+(?=[A-Z0-9"'`+"‘“"+`(\[])`,
	regexp2.None)

// SplitSentences splits text into sentences at likely sentence
// boundaries. Whitespace around each sentence is trimmed; empty
// segments are dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	m, _ := sentenceBoundaryRE.FindStringMatch(text)
	for m != nil {
		if s := strings.TrimSpace(string(runes[start:m.Index])); s != "" {
			out = append(out, s)
		}
		start = m.Index + m.Length
		m, _ = sentenceBoundaryRE.FindNextMatch(m)
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
