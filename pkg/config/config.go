// Package config loads .flowmark.yaml files and merges them with CLI
// flags. Precedence is explicit CLI flags > config file > built-in
// defaults; in --auto mode the preset's formatting fields are locked
// against config override.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/flowmark/flowmark/pkg/resolver"
)

// FileConfig is the parsed contents of a config file. Scalar fields are
// pointers so an unset field is distinguishable from one explicitly set
// to a default value.
type FileConfig struct {
	// Formatting
	Width       *int
	Semantic    *bool
	Cleanups    *bool
	SmartQuotes *bool
	Ellipses    *bool
	ListSpacing *string
	// File discovery
	Include          []string
	ExtendInclude    []string
	Exclude          []string
	ExtendExclude    []string
	FilesMaxSize     *int64
	RespectGitignore *bool
	ForceExclude     *bool
}

// Config file search order within each directory.
var configFilenames = []string{".flowmark.yaml", "flowmark.yaml"}

// FindConfigFile walks up from startDir looking for a config file and
// returns the first one found, or "". Within a directory .flowmark.yaml
// takes precedence over flowmark.yaml.
func FindConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		for _, name := range configFilenames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load parses a config file. A malformed file yields an empty config
// with a warning rather than an error, so a stray config never blocks a
// formatting run. Keys may be flat or grouped under sections
// ("formatting", "file-discovery"); section names themselves carry no
// meaning beyond organization.
func Load(path string) *FileConfig {
	cfg := &FileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("cannot read config file", "path", path, "error", err)
		return cfg
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		slog.Warn("malformed config file", "path", path, "error", err)
		return cfg
	}

	for key, value := range flatten(raw) {
		if !cfg.apply(key, value) {
			slog.Warn("unrecognized config key", "path", path, "key", key)
		}
	}
	return cfg
}

// flatten merges one level of sections into a flat key set.
func flatten(raw map[string]any) map[string]any {
	flat := make(map[string]any, len(raw))
	for key, value := range raw {
		if section, ok := value.(map[string]any); ok {
			for subKey, subValue := range section {
				flat[subKey] = subValue
			}
			continue
		}
		flat[key] = value
	}
	return flat
}

// apply sets one config field from a flattened key, accepting both
// kebab-case and snake_case spellings. Returns false for unknown keys
// and values of the wrong type.
func (c *FileConfig) apply(key string, value any) bool {
	switch key {
	case "width":
		if n, ok := toInt(value); ok {
			w := int(n)
			c.Width = &w
			return true
		}
	case "semantic":
		return setBool(&c.Semantic, value)
	case "cleanups":
		return setBool(&c.Cleanups, value)
	case "smartquotes":
		return setBool(&c.SmartQuotes, value)
	case "ellipses":
		return setBool(&c.Ellipses, value)
	case "list-spacing", "list_spacing":
		if s, ok := value.(string); ok {
			c.ListSpacing = &s
			return true
		}
	case "include":
		return setStrings(&c.Include, value)
	case "extend-include", "extend_include":
		return setStrings(&c.ExtendInclude, value)
	case "exclude":
		return setStrings(&c.Exclude, value)
	case "extend-exclude", "extend_exclude":
		return setStrings(&c.ExtendExclude, value)
	case "files-max-size", "files_max_size":
		if n, ok := toInt(value); ok {
			c.FilesMaxSize = &n
			return true
		}
	case "respect-gitignore", "respect_gitignore":
		return setBool(&c.RespectGitignore, value)
	case "force-exclude", "force_exclude":
		return setBool(&c.ForceExclude, value)
	}
	return false
}

func setBool(dst **bool, value any) bool {
	b, ok := value.(bool)
	if !ok {
		return false
	}
	*dst = &b
	return true
}

func setStrings(dst *[]string, value any) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return false
		}
		out = append(out, s)
	}
	*dst = out
	return true
}

func toInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Settings are the effective options for a run after merging defaults,
// config file, and CLI flags.
type Settings struct {
	Width       int
	Plaintext   bool
	Semantic    bool
	Cleanups    bool
	SmartQuotes bool
	Ellipses    bool
	ListSpacing string
	Renumber    bool
	Inplace     bool
	NoBackup    bool

	Include          []string
	ExtendInclude    []string
	Exclude          []string
	ExtendExclude    []string
	RespectGitignore bool
	ForceExclude     bool
	FilesMaxSize     int64
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Width:            88,
		ListSpacing:      "preserve",
		Include:          resolver.DefaultIncludes(),
		RespectGitignore: true,
		FilesMaxSize:     resolver.DefaultMaxFileSize,
	}
}

// autoLocked reports whether the --auto preset fixes the given field;
// config values for locked fields are ignored in auto mode.
func autoLocked(key string) bool {
	switch key {
	case "semantic", "cleanups", "smartquotes", "ellipses":
		return true
	}
	return false
}

// Merge applies a config file onto settings. explicit reports whether
// the CLI set the given key; explicit flags always win, and in auto
// mode the preset's formatting fields are never overridden.
func Merge(s *Settings, cfg *FileConfig, auto bool, explicit func(key string) bool) {
	if cfg == nil {
		return
	}
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	allow := func(key string) bool {
		return !explicit(key) && !(auto && autoLocked(key))
	}

	if cfg.Width != nil && allow("width") {
		s.Width = *cfg.Width
	}
	if cfg.Semantic != nil && allow("semantic") {
		s.Semantic = *cfg.Semantic
	}
	if cfg.Cleanups != nil && allow("cleanups") {
		s.Cleanups = *cfg.Cleanups
	}
	if cfg.SmartQuotes != nil && allow("smartquotes") {
		s.SmartQuotes = *cfg.SmartQuotes
	}
	if cfg.Ellipses != nil && allow("ellipses") {
		s.Ellipses = *cfg.Ellipses
	}
	if cfg.ListSpacing != nil && allow("list-spacing") {
		s.ListSpacing = *cfg.ListSpacing
	}
	if cfg.Include != nil && allow("include") {
		s.Include = cfg.Include
	}
	if cfg.ExtendInclude != nil && allow("extend-include") {
		s.ExtendInclude = cfg.ExtendInclude
	}
	if cfg.Exclude != nil && allow("exclude") {
		s.Exclude = cfg.Exclude
	}
	if cfg.ExtendExclude != nil && allow("extend-exclude") {
		s.ExtendExclude = cfg.ExtendExclude
	}
	if cfg.FilesMaxSize != nil && allow("files-max-size") {
		s.FilesMaxSize = *cfg.FilesMaxSize
	}
	if cfg.RespectGitignore != nil && allow("respect-gitignore") {
		s.RespectGitignore = *cfg.RespectGitignore
	}
	if cfg.ForceExclude != nil && allow("force-exclude") {
		s.ForceExclude = *cfg.ForceExclude
	}
}
