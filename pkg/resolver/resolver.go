// Package resolver discovers the files a formatting run should touch.
// It resolves a mix of files, directories, and glob patterns into a
// deduplicated, sorted list of paths, respecting gitignore files,
// tool-specific ignore files, and default or custom exclusions.
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/kofalt/go-memoize"
)

// Resolver discovers files matching the configured include patterns.
type Resolver struct {
	cfg     Config
	include gitignore.Matcher
	exclude gitignore.Matcher

	toolIgnore       gitignore.Matcher
	toolIgnoreLoaded bool

	// per-directory .gitignore matchers, cached for the resolver's
	// lifetime
	gitignores *memoize.Memoizer
}

// New builds a Resolver for the given configuration.
func New(cfg Config) *Resolver {
	return &Resolver{
		cfg:        cfg,
		include:    compilePatterns(cfg.EffectiveInclude()),
		exclude:    compilePatterns(cfg.EffectiveExclude()),
		gitignores: memoize.NewMemoizer(-1, -1),
	}
}

// Resolve expands the input paths into a sorted, deduplicated list of
// absolute file paths.
//
// Each input is handled as: an existing file is included directly
// (unless ForceExclude filters it), an existing directory is walked
// recursively with all filters applied, a path containing glob
// characters is expanded then filtered, and anything else is an error.
func (r *Resolver) Resolve(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, dup := seen[abs]; !dup {
			seen[abs] = struct{}{}
			result = append(result, abs)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		switch {
		case err == nil && info.Mode().IsRegular():
			if r.includeExplicit(p) {
				add(p)
			}
		case err == nil && info.IsDir():
			found, err := r.walkDirectory(p)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		case strings.ContainsAny(p, "*?["):
			for _, f := range r.expandGlob(p) {
				add(f)
			}
		default:
			return nil, fmt.Errorf("path not found: %s", p)
		}
	}

	sort.Strings(result)
	return result, nil
}

// includeExplicit decides whether an explicitly named file is kept.
// Exclusion patterns apply to explicit files only under ForceExclude.
func (r *Resolver) includeExplicit(path string) bool {
	if r.cfg.ForceExclude {
		if r.exclude.Match([]string{filepath.Base(path)}, false) {
			return false
		}
		abs, err := filepath.Abs(path)
		if err == nil {
			dir := filepath.Dir(abs)
			for {
				if r.exclude.Match([]string{filepath.Base(dir)}, true) {
					return false
				}
				parent := filepath.Dir(dir)
				if parent == dir {
					break
				}
				dir = parent
			}
		}
	}
	return !r.exceedsMaxSize(path)
}

// walkDirectory walks a tree, pruning excluded directories so they are
// never entered, and collects files matching the include patterns.
func (r *Resolver) walkDirectory(root string) ([]string, error) {
	toolIgnore := r.loadToolIgnore(root)

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = d.Name()
			}
			if r.dirExcluded(d.Name(), rel, filepath.Dir(path), toolIgnore) {
				return fs.SkipDir
			}
			return nil
		}
		if r.include.Match([]string{d.Name()}, false) && !r.exceedsMaxSize(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, nil
}

// dirExcluded checks whether a directory should be pruned: against the
// exclude patterns (by name and by path relative to the walk root),
// against the containing directory's .gitignore, and against the tool
// ignore file.
func (r *Resolver) dirExcluded(name, rel, parent string, toolIgnore gitignore.Matcher) bool {
	nameParts := []string{name}
	relParts := strings.Split(filepath.ToSlash(rel), "/")

	if r.exclude.Match(nameParts, true) || r.exclude.Match(relParts, true) {
		return true
	}
	if r.cfg.RespectGitignore {
		if gi := r.gitignoreFor(parent); gi != nil && gi.Match(nameParts, true) {
			return true
		}
	}
	if toolIgnore != nil && (toolIgnore.Match(nameParts, true) || toolIgnore.Match(relParts, true)) {
		return true
	}
	return false
}

// expandGlob expands a glob pattern (doublestar syntax, so ** works)
// and applies the include and size filters to the matches.
func (r *Resolver) expandGlob(pattern string) []string {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil
	}
	var out []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if r.include.Match([]string{filepath.Base(m)}, false) && !r.exceedsMaxSize(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *Resolver) exceedsMaxSize(path string) bool {
	if r.cfg.FilesMaxSize == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() > r.cfg.FilesMaxSize
}

func (r *Resolver) gitignoreFor(dir string) gitignore.Matcher {
	v, _, _ := r.gitignores.Memoize(dir, func() (interface{}, error) {
		return loadGitignore(dir), nil
	})
	m, _ := v.(gitignore.Matcher)
	return m
}

func (r *Resolver) loadToolIgnore(startDir string) gitignore.Matcher {
	if !r.toolIgnoreLoaded {
		r.toolIgnore = loadToolIgnore(r.cfg.ToolName, startDir)
		r.toolIgnoreLoaded = true
	}
	return r.toolIgnore
}
