package root

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/flowmark/flowmark/pkg/config"
	"github.com/flowmark/flowmark/pkg/markdown"
	"github.com/flowmark/flowmark/pkg/reformat"
	"github.com/flowmark/flowmark/pkg/resolver"
)

type rootFlags struct {
	output      string
	width       int
	plaintext   bool
	semantic    bool
	cleanups    bool
	smartQuotes bool
	ellipses    bool
	listSpacing string
	inplace     bool
	noBackup    bool
	auto        bool
	renumber    bool

	extendInclude      []string
	exclude            []string
	extendExclude      []string
	noRespectGitignore bool
	forceExclude       bool
	listFiles          bool
	filesMaxSize       int64

	docs      bool
	debugMode bool
}

// UsageError indicates bad command-line input, as opposed to a failure
// while processing files. The CLI exits 1 for usage errors and 2 for
// everything else.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

func usageErrorf(format string, a ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, a...)}
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "flowmark [files...]",
		Short: "Better auto-formatting for Markdown and plaintext",
		Long: `Flowmark: Better auto-formatting for Markdown and plaintext

Flowmark rewraps Markdown and plain text to a line width, optionally breaking
lines at sentence boundaries, while leaving code blocks, tables, and inline
formatting intact.

Common usage:
  flowmark --auto README.md
  flowmark --auto docs/
  flowmark --auto .
  flowmark --list-files .

Use 'flowmark --docs' for full documentation.`,
		Example: `  flowmark --auto README.md
  flowmark --auto docs/
  flowmark --auto .
  flowmark --list-files .`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: func() slog.Level {
					if flags.debugMode {
						return slog.LevelDebug
					}
					return slog.LevelInfo
				}(),
			})))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &flags)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "-", "Output file (use '-' for stdout)")
	cmd.Flags().IntVarP(&flags.width, "width", "w", reformat.DefaultWidth, "Line width to wrap to, or 0 to disable line wrapping")
	cmd.Flags().BoolVarP(&flags.plaintext, "plaintext", "p", false, "Process as plaintext (no Markdown parsing)")
	cmd.Flags().BoolVarP(&flags.semantic, "semantic", "s", false, "Enable semantic (sentence-based) line breaks (only applies to Markdown mode)")
	cmd.Flags().BoolVarP(&flags.cleanups, "cleanups", "c", false, "Enable (safe) cleanups for common issues like accidentally boldfaced section headers (only applies to Markdown mode)")
	cmd.Flags().BoolVar(&flags.smartQuotes, "smartquotes", false, "Convert straight quotes to typographic (curly) quotes and apostrophes (only applies to Markdown mode)")
	cmd.Flags().BoolVar(&flags.ellipses, "ellipses", false, "Convert three dots (...) to an ellipsis character with normalized spacing (only applies to Markdown mode)")
	cmd.Flags().StringVar(&flags.listSpacing, "list-spacing", "preserve", "Control list spacing: 'preserve' keeps original tight/loose formatting, 'loose' adds blank lines between all items, 'tight' removes blank lines where possible")
	cmd.Flags().BoolVarP(&flags.inplace, "inplace", "i", false, "Edit the file in place (ignores --output)")
	cmd.Flags().BoolVar(&flags.noBackup, "nobackup", false, "Do not make a backup of the original file when using --inplace")
	cmd.Flags().BoolVar(&flags.auto, "auto", false, "Same as '--inplace --nobackup --semantic --cleanups --smartquotes --ellipses', for fully auto-formatting files")
	cmd.Flags().BoolVar(&flags.renumber, "renumber", false, "Renumber numbered section headings (only applies to Markdown mode)")

	cmd.Flags().StringArrayVar(&flags.extendInclude, "extend-include", nil, "Additional file patterns to include (e.g., '*.mdx'). Can be repeated")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "Replace all default exclusion patterns. Can be repeated")
	cmd.Flags().StringArrayVar(&flags.extendExclude, "extend-exclude", nil, "Add to default exclusion patterns (e.g., 'drafts/'). Can be repeated")
	cmd.Flags().BoolVar(&flags.noRespectGitignore, "no-respect-gitignore", false, "Disable .gitignore integration")
	cmd.Flags().BoolVar(&flags.forceExclude, "force-exclude", false, "Apply exclusion patterns even to files named explicitly on the command line")
	cmd.Flags().BoolVar(&flags.listFiles, "list-files", false, "Print resolved file paths without formatting")
	cmd.Flags().Int64Var(&flags.filesMaxSize, "files-max-size", resolver.DefaultMaxFileSize, "Skip files larger than this size in bytes (0 = no limit)")

	cmd.Flags().BoolVar(&flags.docs, "docs", false, "Print full documentation")
	cmd.PersistentFlags().BoolVarP(&flags.debugMode, "debug", "d", false, "Enable debug logging")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{msg: err.Error()}
	})

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func run(cmd *cobra.Command, args []string, flags *rootFlags) error {
	if flags.docs {
		fmt.Fprint(cmd.OutOrStdout(), docsContent)
		return nil
	}

	if flags.auto {
		flags.inplace = true
		flags.noBackup = true
		flags.semantic = true
		flags.cleanups = true
		flags.smartQuotes = true
		flags.ellipses = true
	}

	files := args
	if len(files) == 0 {
		switch {
		case flags.auto:
			files = []string{"."}
		case flags.listFiles:
			return usageErrorf("--list-files requires at least one file or directory argument (use '.' for the current directory)")
		case !stdinIsTerminal(cmd.InOrStdin()):
			files = []string{"-"}
		default:
			return usageErrorf("no input specified: provide files, directories (use '.' for the current directory), or '-' for stdin")
		}
	}

	settings, err := mergedSettings(cmd, flags)
	if err != nil {
		return err
	}

	if settings.Inplace {
		for _, f := range files {
			if f == "-" {
				return usageErrorf("cannot use --inplace with stdin")
			}
		}
	}

	if needsResolution(files, flags.listFiles) {
		files, err = resolveFiles(files, settings)
		if err != nil {
			return err
		}
	}

	if flags.listFiles {
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	}

	opts := reformat.Options{
		Width:       settings.Width,
		Plaintext:   settings.Plaintext,
		Semantic:    settings.Semantic,
		Cleanups:    settings.Cleanups,
		SmartQuotes: settings.SmartQuotes,
		Ellipses:    settings.Ellipses,
		Renumber:    settings.Renumber,
		ListSpacing: markdown.ListSpacing(settings.ListSpacing),
		Inplace:     settings.Inplace,
		NoBackup:    settings.NoBackup,
		MakeParents: true,
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
	}
	for _, f := range files {
		slog.Debug("reformatting", "path", f)
		if err := reformat.File(f, flags.output, opts); err != nil {
			return err
		}
	}
	return nil
}

// mergedSettings combines built-in defaults, the nearest config file,
// and command-line flags. Explicit flags always win over the config
// file, and --auto locks its formatting preset against config override.
func mergedSettings(cmd *cobra.Command, flags *rootFlags) (config.Settings, error) {
	switch flags.listSpacing {
	case "preserve", "loose", "tight":
	default:
		return config.Settings{}, usageErrorf("invalid --list-spacing %q (expected 'preserve', 'loose', or 'tight')", flags.listSpacing)
	}

	s := config.DefaultSettings()
	s.Width = flags.width
	s.Plaintext = flags.plaintext
	s.Semantic = flags.semantic
	s.Cleanups = flags.cleanups
	s.SmartQuotes = flags.smartQuotes
	s.Ellipses = flags.ellipses
	s.ListSpacing = flags.listSpacing
	s.Renumber = flags.renumber
	s.Inplace = flags.inplace
	s.NoBackup = flags.noBackup
	s.ExtendInclude = flags.extendInclude
	if cmd.Flags().Changed("exclude") {
		s.Exclude = flags.exclude
	}
	s.ExtendExclude = flags.extendExclude
	s.RespectGitignore = !flags.noRespectGitignore
	s.ForceExclude = flags.forceExclude
	s.FilesMaxSize = flags.filesMaxSize

	cwd, err := os.Getwd()
	if err != nil {
		return s, fmt.Errorf("getting working directory: %w", err)
	}
	if path := config.FindConfigFile(cwd); path != "" {
		slog.Debug("loading config file", "path", path)
		config.Merge(&s, config.Load(path), flags.auto, func(key string) bool {
			name, ok := configFlagNames[key]
			return ok && cmd.Flags().Changed(name)
		})
	}
	return s, nil
}

// configFlagNames maps config keys to the CLI flag that sets the same
// field, for detecting explicit flags during the config merge. The
// "include" key has no flag counterpart.
var configFlagNames = map[string]string{
	"width":             "width",
	"semantic":          "semantic",
	"cleanups":          "cleanups",
	"smartquotes":       "smartquotes",
	"ellipses":          "ellipses",
	"list-spacing":      "list-spacing",
	"extend-include":    "extend-include",
	"exclude":           "exclude",
	"extend-exclude":    "extend-exclude",
	"respect-gitignore": "no-respect-gitignore",
	"force-exclude":     "force-exclude",
	"files-max-size":    "files-max-size",
}

// needsResolution reports whether any input is a directory or a glob
// pattern, in which case the file resolver expands it.
func needsResolution(files []string, listFiles bool) bool {
	if listFiles {
		return true
	}
	for _, f := range files {
		if f == "-" {
			continue
		}
		if info, err := os.Stat(f); err == nil && info.IsDir() {
			return true
		}
		if strings.ContainsAny(f, "*?[") {
			return true
		}
	}
	return false
}

// resolveFiles expands directories and globs into concrete file paths.
// A stdin marker passes through untouched at the front of the list.
func resolveFiles(files []string, s config.Settings) ([]string, error) {
	resolvable := make([]string, 0, len(files))
	stdinPresent := false
	for _, f := range files {
		if f == "-" {
			stdinPresent = true
			continue
		}
		resolvable = append(resolvable, f)
	}

	r := resolver.New(resolver.Config{
		ToolName:         "flowmark",
		Include:          s.Include,
		ExtendInclude:    s.ExtendInclude,
		Exclude:          s.Exclude,
		ExtendExclude:    s.ExtendExclude,
		RespectGitignore: s.RespectGitignore,
		ForceExclude:     s.ForceExclude,
		FilesMaxSize:     s.FilesMaxSize,
	})
	resolved, err := r.Resolve(resolvable)
	if err != nil {
		return nil, err
	}
	if stdinPresent {
		resolved = append([]string{"-"}, resolved...)
	}
	return resolved, nil
}

func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	cmd := NewRootCmd()
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
