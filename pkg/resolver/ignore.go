package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// compilePatterns builds a gitignore matcher from pattern lines.
func compilePatterns(patterns []string) gitignore.Matcher {
	ps := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		ps = append(ps, gitignore.ParsePattern(p, nil))
	}
	return gitignore.NewMatcher(ps)
}

// parseIgnoreFile reads an ignore file and compiles its non-blank,
// non-comment lines. Returns nil when the file is missing, unreadable,
// or holds no patterns.
func parseIgnoreFile(path string) gitignore.Matcher {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return nil
	}
	return compilePatterns(patterns)
}

// loadGitignore compiles the .gitignore in the given directory, or nil.
func loadGitignore(dir string) gitignore.Matcher {
	return parseIgnoreFile(filepath.Join(dir, ".gitignore"))
}

// loadToolIgnore walks up from startDir looking for .<toolName>ignore
// (".flowmarkignore") and compiles the first one found, or nil. The
// search stops at the first file even if it holds no patterns.
func loadToolIgnore(toolName, startDir string) gitignore.Matcher {
	name := "." + toolName + "ignore"
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return parseIgnoreFile(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}
