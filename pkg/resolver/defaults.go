package resolver

// DefaultMaxFileSize is the default per-file size limit (1 MiB). Files
// larger than this are skipped during discovery; 0 disables the limit.
const DefaultMaxFileSize int64 = 1 << 20

// DefaultIncludes returns the default include patterns.
func DefaultIncludes() []string {
	return []string{"*.md"}
}

// DefaultExcludes returns directories that should almost never contain
// files worth formatting. Patterns use gitignore syntax; directory
// patterns end with a slash and are pruned during traversal rather than
// entered.
func DefaultExcludes() []string {
	return []string{
		// Version control
		".git/",
		".hg/",
		".svn/",
		".bzr/",
		"_darcs/",
		// Python
		".venv/",
		"venv/",
		"__pycache__/",
		".tox/",
		".nox/",
		".mypy_cache/",
		".ruff_cache/",
		".pytest_cache/",
		".eggs/",
		"*.egg-info/",
		// Build output
		"build/",
		"dist/",
		// JavaScript/Node
		"node_modules/",
		".next/",
		".nuxt/",
		".output/",
		".cache/",
		".parcel-cache/",
		".turbo/",
		// IDE/Editor
		".idea/",
		".vscode/",
		".vs/",
		".fleet/",
		// Coverage
		"coverage/",
		"htmlcov/",
		".coverage/",
		// Other
		"vendor/",
		"third_party/",
		"Pods/",
		"target/",
		".terraform/",
	}
}
