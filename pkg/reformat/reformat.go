// Package reformat is the high-level entry point tying the Markdown
// filler and the plain-text wrapper to files: it reads stdin or a file,
// reformats, and writes stdout, another file, or the same file in place
// with atomic replacement.
package reformat

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/flowmark/flowmark/pkg/linewrap"
	"github.com/flowmark/flowmark/pkg/markdown"
)

// DefaultWidth is the standard wrap width.
const DefaultWidth = linewrap.DefaultWrapWidth

// Options select the reformatting behavior. The zero value wraps
// Markdown at the given Width with no extra transforms.
type Options struct {
	Width       int
	Plaintext   bool
	Semantic    bool
	Cleanups    bool
	SmartQuotes bool
	Ellipses    bool
	Renumber    bool
	ListSpacing markdown.ListSpacing

	Inplace     bool
	NoBackup    bool
	MakeParents bool

	// Stdin and Stdout override the process streams for "-" paths.
	Stdin  io.Reader
	Stdout io.Writer
}

// Text reformats a document, routing to Markdown filling or plain-text
// wrapping.
func Text(src string, opts Options) string {
	if opts.Plaintext {
		return fillPlaintext(src, opts.Width)
	}

	mdOpts := []markdown.Option{markdown.WithWidth(opts.Width)}
	if opts.Semantic {
		mdOpts = append(mdOpts, markdown.WithSemantic())
	}
	if opts.Cleanups {
		mdOpts = append(mdOpts, markdown.WithCleanups())
	}
	if opts.SmartQuotes {
		mdOpts = append(mdOpts, markdown.WithSmartQuotes())
	}
	if opts.Ellipses {
		mdOpts = append(mdOpts, markdown.WithEllipses())
	}
	if opts.Renumber {
		mdOpts = append(mdOpts, markdown.WithRenumber())
	}
	if opts.ListSpacing != "" {
		mdOpts = append(mdOpts, markdown.WithListSpacing(opts.ListSpacing))
	}
	return markdown.Fill(src, mdOpts...)
}

var paragraphBreakRE = regexp.MustCompile(`\n[ \t]*\n+`)

// fillPlaintext wraps each blank-line-separated paragraph to the width.
// Length is measured in grapheme clusters so combining characters and
// emoji count as one column each.
func fillPlaintext(src string, width int) string {
	var out []string
	for _, para := range paragraphBreakRE.Split(src, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		out = append(out, linewrap.WrapParagraph(para, width, "", "",
			linewrap.WithLenFunc(linewrap.GraphemeLen)))
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n\n") + "\n"
}

// File reformats path ("-" for stdin) and writes the result to output
// ("-" or empty for stdout), or back to path when Inplace is set. File
// replacement is atomic, and in-place runs keep the original as
// path.orig unless NoBackup is set.
func File(path, output string, opts Options) error {
	readStdin := path == "-"
	writeStdout := output == "-" || output == ""

	if opts.Inplace && readStdin {
		return fmt.Errorf("cannot reformat stdin in place")
	}

	var src []byte
	var err error
	if readStdin {
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result := Text(string(src), opts)

	switch {
	case opts.Inplace:
		if string(src) == result {
			return nil
		}
		if !opts.NoBackup {
			if err := os.WriteFile(path+".orig", src, 0o644); err != nil {
				return fmt.Errorf("writing backup for %s: %w", path, err)
			}
		}
		return writeAtomic(path, result, opts.MakeParents)
	case writeStdout:
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		_, err := io.WriteString(stdout, result)
		return err
	default:
		return writeAtomic(output, result, opts.MakeParents)
	}
}

func writeAtomic(path, content string, makeParents bool) error {
	if makeParents {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(content))); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
