package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	err = Execute(context.Background(), strings.NewReader(stdin), &out, &errBuf, args...)
	return out.String(), errBuf.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// makeTree creates a minimal project directory for discovery tests.
func makeTree(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "README.md"), "# Root\n")
	writeFile(t, filepath.Join(root, "docs", "guide.md"), "# Guide\n")
	writeFile(t, filepath.Join(root, "docs", "api.md"), "# API\n")
	writeFile(t, filepath.Join(root, "code.py"), "print('hello')\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "README.md"), "# Should be excluded\n")
	writeFile(t, filepath.Join(root, ".venv", "lib", "README.md"), "# Should be excluded\n")
}

func listedNames(out string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			names = append(names, filepath.Base(line))
		}
	}
	sort.Strings(names)
	return names
}

func TestListFiles_Directory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	makeTree(t, dir)

	out, _, err := runCLI(t, "", "--list-files", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "api.md", "guide.md"}, listedNames(out))
	assert.NotContains(t, out, "node_modules")
	assert.NotContains(t, out, ".venv")
}

func TestListFiles_ExtendInclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	makeTree(t, dir)
	writeFile(t, filepath.Join(dir, "page.mdx"), "# MDX page\n")

	out, _, err := runCLI(t, "", "--list-files", "--extend-include", "*.mdx", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "page.mdx")
}

func TestListFiles_ExtendExclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	makeTree(t, dir)
	writeFile(t, filepath.Join(dir, "drafts", "wip.md"), "# WIP\n")

	out, _, err := runCLI(t, "", "--list-files", "--extend-exclude", "drafts/", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "drafts")
	assert.Contains(t, out, "README.md")
}

func TestListFiles_NoRespectGitignore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.md"), "# Keep\n")
	writeFile(t, filepath.Join(dir, ".gitignore"), "ignored/\n")
	writeFile(t, filepath.Join(dir, "ignored", "found.md"), "# Found\n")

	out, _, err := runCLI(t, "", "--list-files", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "found.md")

	out, _, err = runCLI(t, "", "--list-files", "--no-respect-gitignore", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "found.md")
}

func TestListFiles_ForceExclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	explicit := filepath.Join(dir, "node_modules", "README.md")
	writeFile(t, explicit, "# Excluded\n")

	out, _, err := runCLI(t, "", "--list-files", "--force-exclude", explicit)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestListFiles_MaxSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.md"), "# Small\n")
	writeFile(t, filepath.Join(dir, "large.md"), strings.Repeat("x", 2_000_000))

	out, _, err := runCLI(t, "", "--list-files", "--files-max-size", "100", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "small.md")
	assert.NotContains(t, out, "large.md")
}

func TestListFiles_StdinMarkerPassesThrough(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Root\n")

	out, _, err := runCLI(t, "", "--list-files", "-", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "README.md")
	assert.Equal(t, "-", strings.Split(strings.TrimSpace(out), "\n")[0])
}

func TestListFiles_NoArgsIsUsageError(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, "", "--list-files")
	require.Error(t, err)
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestFlowmarkignore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.md"), "# Keep\n")
	writeFile(t, filepath.Join(dir, "skip", "nope.md"), "# Nope\n")
	writeFile(t, filepath.Join(dir, ".flowmarkignore"), "skip/\n")

	out, _, err := runCLI(t, "", "--list-files", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "keep.md")
	assert.NotContains(t, out, "skip")
}

func TestAuto_NoArgsFormatsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.md")
	writeFile(t, path, "# Test\n\nSome text here.\n")
	t.Chdir(dir)

	_, _, err := runCLI(t, "", "--auto")
	require.NoError(t, err)
	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "# Test")
}

func TestAuto_ExplicitFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	writeFile(t, path, "# Test\n\nSome text.\n")

	_, _, err := runCLI(t, "", "--auto", path)
	require.NoError(t, err)
	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "# Test")
	assert.NoFileExists(t, path+".orig")
}

func TestExplicitFile_WritesStdout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.md")
	writeFile(t, path, "# Hello World\n")

	out, _, err := runCLI(t, "", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Hello World")
}

func TestStdin(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "# From stdin\n", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "# From stdin")
}

func TestStdin_ImplicitWhenPiped(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "# Piped\n")
	require.NoError(t, err)
	assert.Contains(t, out, "# Piped")
}

func TestInplace_StdinRejected(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, "# Text\n", "--inplace", "-")
	require.Error(t, err)
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestInvalidListSpacing(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, "", "--list-spacing", "bogus", "-")
	require.Error(t, err)
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
	assert.Contains(t, err.Error(), "list-spacing")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, "", "--no-such-flag")
	require.Error(t, err)
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestSemanticFlag(t *testing.T) {
	t.Parallel()

	in := "The first sentence is long enough. The second sentence is long enough too.\n"
	out, _, err := runCLI(t, in, "--semantic", "-")
	require.NoError(t, err)
	assert.Equal(t, "The first sentence is long enough.\nThe second sentence is long enough too.\n", out)
}

func TestOutputFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "in.md")
	dst := filepath.Join(dir, "sub", "out.md")
	writeFile(t, src, "# Title\n\nBody text.\n")

	_, _, err := runCLI(t, "", "-o", dst, src)
	require.NoError(t, err)
	content, readErr := os.ReadFile(dst)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "# Title")
}

func TestConfigFile_WidthApplied(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".flowmark.yaml"), "width: 20\n")
	path := filepath.Join(dir, "test.md")
	writeFile(t, path, "word word word word word word word\n")
	t.Chdir(dir)

	out, _, err := runCLI(t, "", path)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 20, "line %q exceeds config width", line)
	}

	// An explicit flag wins over the config file.
	out, _, err = runCLI(t, "", "--width", "88", path)
	require.NoError(t, err)
	assert.Equal(t, "word word word word word word word\n", out)
}

func TestHelp(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Flowmark: Better auto-formatting for Markdown and plaintext")
	assert.Contains(t, out, "Common usage:")
	assert.Contains(t, out, "flowmark --auto README.md")
	assert.Contains(t, out, "flowmark --list-files .")
	assert.Contains(t, out, "flowmark --docs")
}

func TestDocs(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "", "--docs")
	require.NoError(t, err)
	assert.Contains(t, out, "# Flowmark")
	assert.Contains(t, out, "File discovery")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "flowmark version")
}
