package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/itg/internal/config"
	"github.com/raphi011/itg/internal/git"
	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

// newRootCmd builds the command tree. A bare title argument creates an
// issue, as if prefixed with `issue`.
func newRootCmd() *cobra.Command {
	var (
		// Global flags
		verbose bool
		quiet   bool

		opts           issueOptions
		disableWarning bool
		enableWarning  bool
	)

	cmd := &cobra.Command{
		Use:   "itg [title]",
		Short: "GitHub issue and pull request workflow from the command line",
		Long: `itg creates GitHub issues together with their branches and turns those
branches into pull requests.

Issue branches are named after the issue, e.g. issue #42 "Fix login page"
lives on fix-login-page-i42, so pull request commands know which issue the
current branch belongs to.

Creating an issue without the 'issue' prefix requires a quoted title
(containing spaces) unless warnings are disabled.`,
		Example: `  itg "Fix login page"           # Create an issue and switch to its branch
  itg issue "Crash on start" -b  # Create a bug
  itg pr -d                      # Open a draft pull request for the current issue
  itg --disable-warning          # Allow unquoted titles without 'issue'`,
		Args:                       cobra.ArbitraryArgs,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags are parsed now; downsample styled status lines for the
			// terminal, or strip them when stderr is piped.
			stderr := colorprofile.NewWriter(os.Stderr, os.Environ())
			cmd.SetContext(log.WithLogger(cmd.Context(), log.New(stderr, verbose, quiet)))

			// Skip git check for completion and help commands
			if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
				return nil
			}

			// Validate mutually exclusive flags
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}

			// Check git is available
			return git.CheckGit()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch {
			case disableWarning:
				return setWarning(ctx, true)
			case enableWarning:
				return setWarning(ctx, false)
			case len(args) == 0:
				return cmd.Help()
			}

			cfg := configFrom(ctx)
			title := strings.Join(args, " ")
			if !cfg.WarningDisabled && !strings.ContainsAny(args[0], " \t") {
				return fmt.Errorf(`unknown command %q
To create an issue without the 'issue' prefix, quote the title:
  itg "%s"
To allow unquoted titles, run:
  itg --disable-warning`, args[0], title)
			}

			opts.title = title
			return runCreateIssue(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&disableWarning, "disable-warning", false, "Allow creating issues without the 'issue' prefix and quotes")
	cmd.Flags().BoolVar(&enableWarning, "enable-warning", false, "Require the 'issue' prefix or a quoted title again")
	cmd.MarkFlagsMutuallyExclusive("disable-warning", "enable-warning")
	addIssueFlags(cmd, &opts)

	// Global flags
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	cmd.AddCommand(newIssueCmd())
	cmd.AddCommand(newPrCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute builds the command tree and runs it with signal handling.
func Execute() {
	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "itg: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx = config.WithConfig(ctx, cfg)
	ctx = withWorkDir(ctx, workDir)
	ctx = withStore(ctx, newStore(cfg, workDir))

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'itg -h' for help")
		os.Exit(1)
	}
}

// loadConfig reads the global config and merges the repository's
// .itg.toml on top when workDir is inside a repository.
func loadConfig(workDir string) (*config.Config, error) {
	global, err := config.Load()
	if err != nil {
		return &global, err
	}

	root, err := git.RepoRoot(workDir)
	if err != nil {
		// outside a repository only the global config applies
		return &global, nil
	}
	local, err := config.LoadLocal(root)
	if err != nil {
		return &global, err
	}
	return config.MergeLocal(&global, local), nil
}

func setWarning(ctx context.Context, disabled bool) error {
	path, err := config.Update(func(c *config.Config) {
		c.WarningDisabled = disabled
	})
	if err != nil {
		return err
	}

	l := log.FromContext(ctx)
	if disabled {
		l.Println("Warnings are now disabled. To enable them again, run:")
		l.Println("  itg --enable-warning")
		l.Println()
		l.Println("Issues can now be created without the 'issue' prefix.")
	} else {
		l.Println("Warnings are now enabled. To disable them again, run:")
		l.Println("  itg --disable-warning")
	}
	l.Debug("saved config", "path", path)
	return nil
}
