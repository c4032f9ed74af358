package linewrap

import (
	"regexp"
	"strings"
)

// Block-content heuristics. These detect lines whose structure is semantically
// meaningful to the Markdown grammar (table rows, list items), so their
// newlines must survive reflow. They are intentionally simple and
// conservative.

var (
	tableRowRE = regexp.MustCompile(`^\s*\|`)
	listItemRE = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s`)
)

// LineIsTableRow reports whether the line appears to be a Markdown table row.
func LineIsTableRow(line string) bool {
	return tableRowRE.MatchString(line)
}

// LineIsListItem reports whether the line appears to be a Markdown list item
// (bullet or numbered marker followed by whitespace).
func LineIsListItem(line string) bool {
	return listItemRE.MatchString(line)
}

// LineIsBlockContent reports whether the line is block content that needs its
// newline preserved during wrapping.
func LineIsBlockContent(line string) bool {
	return LineIsTableRow(line) || LineIsListItem(line)
}

// TextContainsBlockContent reports whether any line of text is block content.
func TextContainsBlockContent(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if LineIsBlockContent(line) {
			return true
		}
	}
	return false
}
