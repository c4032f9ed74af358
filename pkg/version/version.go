// Package version holds build metadata, set via ldflags at release
// time.
package version

var (
	// Version is the release version.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)
