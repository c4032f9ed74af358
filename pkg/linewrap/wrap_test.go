package linewrap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownEscapeWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want string
	}{
		{"-", `\-`},
		{"+", `\+`},
		{"*", `\*`},
		{">", `\>`},
		{"#", `\#`},
		{"##", `\##`},
		{"1.", `1\.`},
		{"10.", `10\.`},
		{"1)", `1\)`},
		{"99)", `99\)`},

		// Not escaped.
		{"word", "word"},
		{"-word", "-word"},
		{"word-", "word-"},
		{"#word", "#word"},
		{"word#", "word#"},
		{"1.word", "1.word"},
		{"word1.", "word1."},
		{"1)word", "1)word"},
		{"word1)", "word1)"},
		{"<tag>", "<tag>"},
		{"[link]", "[link]"},
		{"1", "1"},
		{".", "."},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MarkdownEscapeWord(tt.word))
		})
	}
}

func TestWrapParagraphLines_MarkdownEscaping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"- word"},
		WrapParagraphLines("- word", 10, WithMarkdown()))

	text := "word - word * word + word > word # word ## word 1. word 2) word"

	assert.Equal(t, []string{
		"word",
		`\-`,
		"word",
		`\*`,
		"word",
		`\+`,
		"word",
		`\>`,
		"word",
		`\#`,
		"word",
		`\##`,
		"word",
		`1\.`,
		"word",
		`2\)`,
		"word",
	}, WrapParagraphLines(text, 5, WithMarkdown()))

	assert.Equal(t, []string{
		"word -",
		"word *",
		"word +",
		"word >",
		"word #",
		"word ##",
		"word 1.",
		"word 2)",
		"word",
	}, WrapParagraphLines(text, 10, WithMarkdown()))

	assert.Equal(t, []string{
		"word - word *",
		"word + word >",
		"word # word ##",
		"word 1. word 2)",
		"word",
	}, WrapParagraphLines(text, 15, WithMarkdown()))

	assert.Equal(t, []string{
		"word - word * word +",
		"word > word # word",
		`\## word 1. word 2)`,
		"word",
	}, WrapParagraphLines(text, 20, WithMarkdown()))

	// Without Markdown mode, no escaping happens.
	assert.Equal(t, []string{
		"word - word * word +",
		"word > word # word",
		"## word 1. word 2)",
		"word",
	}, WrapParagraphLines(text, 20))
}

func TestWrapParagraphLines_DashAtLineStart(t *testing.T) {
	t.Parallel()

	text := "Testing - : Is Ketamine Contraindicated in Patients with Psychiatric Disorders?" +
		" - REBEL EM - more words - accessed April 24, 2025," +
		" <https://rebelem.com/is-ketamine-contraindicated-in-patients-with-psychiatric-disorders/>"

	assert.Equal(t, []string{
		"Testing - : Is Ketamine Contraindicated in Patients with Psychiatric Disorders?",
		`\- REBEL EM - more words - accessed April 24, 2025,`,
		"<https://rebelem.com/is-ketamine-contraindicated-in-patients-with-psychiatric-disorders/>",
	}, WrapParagraphLines(text, 80, WithMarkdown()))
}

func TestWrapParagraphLines_Width(t *testing.T) {
	t.Parallel()

	text := "You may also simply ask a question and the assistant will help you. Press " +
		"`?` or just press space twice, then write your question or request. Press `?` and " +
		"tab to get suggested questions."

	lines := WrapParagraphLines(text, 80)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 80, "line too long: %q", line)
	}
}

func TestWrapParagraphLines_ZeroWidth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"one two three"}, WrapParagraphLines("one\n  two\tthree", 0))
	assert.Nil(t, WrapParagraphLines("  \n ", 0))
}

func TestWrapParagraph(t *testing.T) {
	t.Parallel()

	sample := "This is a sample text with a [Markdown link](https://example.com)" +
		" and an <a href='#'>tag</a>. It should demonstrate the functionality of " +
		"our enhanced text wrapping implementation."

	t.Run("simple splitter", func(t *testing.T) {
		t.Parallel()
		got := WrapParagraph(sample, 40, ">", ">>", WithSplitter(SimpleWordSplitter))
		want := strings.Join([]string{
			">This is a sample text with a [Markdown",
			">>link](https://example.com) and an <a",
			">>href='#'>tag</a>. It should",
			">>demonstrate the functionality of our",
			">>enhanced text wrapping implementation.",
		}, "\n")
		assert.Equal(t, want, got)
	})

	t.Run("construct-aware splitter", func(t *testing.T) {
		t.Parallel()
		got := WrapParagraph(sample, 40, ">", ">>")
		want := strings.Join([]string{
			">This is a sample text with a",
			">>[Markdown link](https://example.com)",
			">>and an <a href='#'>tag</a>. It should",
			">>demonstrate the functionality of our",
			">>enhanced text wrapping implementation.",
		}, "\n")
		assert.Equal(t, want, got)
	})

	t.Run("nonzero initial column", func(t *testing.T) {
		t.Parallel()
		got := WrapParagraph(sample, 40, ">", ">>", WithInitialColumn(35))
		want := strings.Join([]string{
			"This",
			">>is a sample text with a",
			">>[Markdown link](https://example.com)",
			">>and an <a href='#'>tag</a>. It should",
			">>demonstrate the functionality of our",
			">>enhanced text wrapping implementation.",
		}, "\n")
		assert.Equal(t, want, got)
	})
}

func TestWrapParagraph_OversizedAtom(t *testing.T) {
	t.Parallel()

	link := "[a very long link label here](https://example.com/some/very/long/path/to/a/page)"
	got := WrapParagraphLines("See "+link+" for details.", 30, WithMarkdown())

	require.Len(t, got, 3)
	assert.Equal(t, link, got[1], "oversized atom must sit alone on its own line, unsplit")
}

func TestWrapParagraph_RestoresTagAdjacency(t *testing.T) {
	t.Parallel()

	text := "{% field kind='string' %}{% /field %}"
	got := WrapParagraph(text, 88, "", "")
	assert.Equal(t, text, got)
}
