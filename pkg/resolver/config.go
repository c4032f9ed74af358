package resolver

// Config controls file discovery and filtering.
//
// ToolName determines the ignore file name (".flowmarkignore" for
// "flowmark"). A nil Exclude means DefaultExcludes; providing a slice
// replaces the defaults entirely. FilesMaxSize of 0 disables the size
// limit.
type Config struct {
	ToolName         string
	Include          []string
	ExtendInclude    []string
	Exclude          []string
	ExtendExclude    []string
	RespectGitignore bool
	ForceExclude     bool
	FilesMaxSize     int64
}

// DefaultConfig returns a Config with the standard defaults.
func DefaultConfig() Config {
	return Config{
		ToolName:         "flowmark",
		Include:          DefaultIncludes(),
		RespectGitignore: true,
		FilesMaxSize:     DefaultMaxFileSize,
	}
}

// EffectiveInclude returns the combined include patterns.
func (c Config) EffectiveInclude() []string {
	return append(append([]string{}, c.Include...), c.ExtendInclude...)
}

// EffectiveExclude returns the combined exclude patterns: the defaults
// (or the replacement Exclude list) plus ExtendExclude.
func (c Config) EffectiveExclude() []string {
	base := c.Exclude
	if base == nil {
		base = DefaultExcludes()
	}
	return append(append([]string{}, base...), c.ExtendExclude...)
}
