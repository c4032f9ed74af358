package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	sort.Strings(names)
	return names
}

func TestConfigEffectiveInclude(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ExtendInclude = []string{"*.markdown", "*.mdx"}
	assert.Equal(t, []string{"*.md", "*.markdown", "*.mdx"}, cfg.EffectiveInclude())

	cfg = Config{Include: []string{"*.txt"}, ExtendInclude: []string{"*.rst"}}
	assert.Equal(t, []string{"*.txt", "*.rst"}, cfg.EffectiveInclude())
}

func TestConfigEffectiveExclude(t *testing.T) {
	t.Parallel()

	t.Run("replaced", func(t *testing.T) {
		t.Parallel()

		cfg := Config{Exclude: []string{"custom_dir/"}}
		assert.Equal(t, []string{"custom_dir/"}, cfg.EffectiveExclude())
	})

	t.Run("extended keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := Config{ExtendExclude: []string{"extra_dir/"}}
		effective := cfg.EffectiveExclude()
		assert.Contains(t, effective, "extra_dir/")
		for _, pattern := range DefaultExcludes() {
			assert.Contains(t, effective, pattern)
		}
	})
}

func TestResolveSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	writeFile(t, readme, "# Hello")

	result, err := New(DefaultConfig()).Resolve([]string{readme})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "README.md", filepath.Base(result[0]))
	assert.True(t, filepath.IsAbs(result[0]))
}

func TestResolveDirectoryRecursion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Root")
	writeFile(t, filepath.Join(dir, "docs", "guide.md"), "# Guide")
	writeFile(t, filepath.Join(dir, "docs", "api.md"), "# API")
	writeFile(t, filepath.Join(dir, "code.py"), "# not markdown")

	result, err := New(DefaultConfig()).Resolve([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "api.md", "guide.md"}, baseNames(result))
}

func TestResolveExcludesDefaultDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Root")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "README.md"), "# Excluded")
	writeFile(t, filepath.Join(dir, ".venv", "lib", "README.md"), "# Excluded")

	result, err := New(DefaultConfig()).Resolve([]string{dir})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "README.md", filepath.Base(result[0]))
}

func TestResolveRespectsGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Root")
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n")
	writeFile(t, filepath.Join(dir, "build", "output.md"), "# Ignored")

	result, err := New(DefaultConfig()).Resolve([]string{dir})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "README.md", filepath.Base(result[0]))
}

func TestResolveNoRespectGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.md"), "# Good")
	writeFile(t, filepath.Join(dir, ".gitignore"), "ignored/\n")
	writeFile(t, filepath.Join(dir, "ignored", "found.md"), "# Found")

	cfg := DefaultConfig()
	cfg.RespectGitignore = false
	result, err := New(cfg).Resolve([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"found.md", "good.md"}, baseNames(result))
}

func TestResolveNestedGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "root.md"), "# Root")
	writeFile(t, filepath.Join(dir, "sub", "keep.md"), "# Keep")
	writeFile(t, filepath.Join(dir, "sub", ".gitignore"), "generated/\n")
	writeFile(t, filepath.Join(dir, "sub", "generated", "output.md"), "# Generated")

	result, err := New(DefaultConfig()).Resolve([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.md", "root.md"}, baseNames(result))
}

func TestResolveForceExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	excluded := filepath.Join(dir, "node_modules", "README.md")
	writeFile(t, excluded, "# Excluded")

	t.Run("filters explicit files", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.ForceExclude = true
		result, err := New(cfg).Resolve([]string{excluded})
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("explicit files bypass exclusions by default", func(t *testing.T) {
		t.Parallel()

		result, err := New(DefaultConfig()).Resolve([]string{excluded})
		require.NoError(t, err)
		require.Len(t, result, 1)
	})
}

func TestResolveExtendInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), "# MD")
	writeFile(t, filepath.Join(dir, "page.mdx"), "# MDX")
	writeFile(t, filepath.Join(dir, "code.py"), "# Not included")

	cfg := DefaultConfig()
	cfg.ExtendInclude = []string{"*.mdx"}
	result, err := New(cfg).Resolve([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"page.mdx", "readme.md"}, baseNames(result))
}

func TestResolveExcludeReplacesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Root")
	writeFile(t, filepath.Join(dir, "node_modules", "README.md"), "# In node_modules")
	writeFile(t, filepath.Join(dir, "custom_dir", "README.md"), "# In custom_dir")

	cfg := DefaultConfig()
	cfg.Exclude = []string{"custom_dir/"}
	result, err := New(cfg).Resolve([]string{dir})
	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, p := range result {
		assert.NotContains(t, p, "custom_dir")
	}
	joined := strings.Join(result, "\n")
	assert.Contains(t, joined, "node_modules")
}

func TestResolveExtendExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Root")
	writeFile(t, filepath.Join(dir, "drafts", "wip.md"), "# WIP")

	cfg := DefaultConfig()
	cfg.ExtendExclude = []string{"drafts/"}
	result, err := New(cfg).Resolve([]string{dir})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "README.md", filepath.Base(result[0]))
}

func TestResolveFilesMaxSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.md"), "# Small")
	writeFile(t, filepath.Join(dir, "large.md"), strings.Repeat("x", 2_000_000))

	t.Run("limit enforced", func(t *testing.T) {
		t.Parallel()

		result, err := New(DefaultConfig()).Resolve([]string{dir})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "small.md", filepath.Base(result[0]))
	})

	t.Run("zero disables limit", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.FilesMaxSize = 0
		result, err := New(cfg).Resolve([]string{dir})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})
}

func TestResolveGlobPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "a.md"), "# A")
	writeFile(t, filepath.Join(dir, "docs", "b.md"), "# B")
	writeFile(t, filepath.Join(dir, "docs", "c.txt"), "not md")

	result, err := New(DefaultConfig()).Resolve([]string{filepath.Join(dir, "docs", "*.md")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, baseNames(result))
}

func TestResolveMixedInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.md")
	writeFile(t, explicit, "# Explicit")
	writeFile(t, filepath.Join(dir, "sub", "found.md"), "# Found")

	result, err := New(DefaultConfig()).Resolve([]string{explicit, filepath.Join(dir, "sub")})
	require.NoError(t, err)
	assert.Equal(t, []string{"explicit.md", "found.md"}, baseNames(result))
}

func TestResolveDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := filepath.Join(dir, "README.md")
	writeFile(t, f, "# Hello")

	result, err := New(DefaultConfig()).Resolve([]string{f, f, dir})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestResolveSortedOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"c.md", "a.md", "b.md"} {
		writeFile(t, filepath.Join(dir, name), "# "+name)
	}

	result, err := New(DefaultConfig()).Resolve([]string{dir})
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(result))
	assert.Len(t, result, 3)
}

func TestResolvePathNotFound(t *testing.T) {
	t.Parallel()

	_, err := New(DefaultConfig()).Resolve([]string{"/nonexistent/path/file.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

func TestResolveToolIgnoreFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.md"), "# Keep")
	writeFile(t, filepath.Join(dir, "drafts", "skip.md"), "# Skip")
	writeFile(t, filepath.Join(dir, ".flowmarkignore"), "drafts/\n")

	result, err := New(DefaultConfig()).Resolve([]string{dir})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "keep.md", filepath.Base(result[0]))
}
