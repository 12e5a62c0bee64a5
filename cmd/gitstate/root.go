package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/cmd"
	"github.com/raphi011/gitstate/internal/config"
	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
	"github.com/raphi011/gitstate/internal/service"
)

// Command group IDs for organizing help output
const (
	GroupState     = "state"
	GroupIntegrate = "integrate"
	GroupConfig    = "config"
)

// app is the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Global flags
	repoDir string
	verbose bool
	quiet   bool
	jsonOut bool

	cfg *config.Config

	// Set by open
	repo    string
	engine  *git.Engine
	tags    *service.TagService
	stashes *service.StashService
	merges  *service.MergeService
	patches *service.PatchService
}

// run executes gitstate with args (args[0] is the program name) and
// returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}

	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    &loadedCfg,
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd(a)
	if len(args) > 0 {
		args = args[1:]
	}
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		if !isGitFailure(err) {
			fmt.Fprintln(stderr)
			fmt.Fprintln(stderr, "Run 'gitstate -h' for help")
		}
		return 1
	}
	return 0
}

// isGitFailure reports whether err carries git's own diagnostics, in which
// case the usage hint is noise.
func isGitFailure(err error) bool {
	return errors.Is(err, git.ErrToolFailure) ||
		errors.Is(err, git.ErrApplyFailure) ||
		errors.Is(err, git.ErrParseFailure) ||
		errors.Is(err, git.ErrLaunchFailure)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitstate",
		Short: "Inspect and change git repository state",
		Long: `gitstate manages the state of a git repository: tags, stashes,
in-progress merges and rebases, and patches.

Tag and stash listings are cached per repository for a short time and
invalidated by every mutation made through gitstate.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate mutually exclusive flags
			if a.verbose && a.quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}

			ctx := cmd.Context()
			ctx = log.WithLogger(ctx, log.New(colorprofile.NewWriter(a.stderr, os.Environ()), a.verbose, a.quiet))
			ctx = output.WithTerminalPrinter(ctx, a.stdout, os.Environ())
			ctx = config.WithConfig(ctx, a.cfg)
			cmd.SetContext(ctx)

			// Skip git check for completion and help commands
			if !needsRepo(cmd) {
				return nil
			}

			if err := git.CheckGit(a.cfg.Git); err != nil {
				return err
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			cmd.SetContext(config.WithConfig(ctx, a.cfg))
			return nil
		},
		// Run is not set - shows help when no subcommand provided
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&a.repoDir, "repo", "C", ".", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show git commands and cache decisions")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print machine-readable JSON")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupState, Title: "State Commands:"},
		&cobra.Group{ID: GroupIntegrate, Title: "Integration Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// State commands
	rootCmd.AddCommand(newTagCmd(a))
	rootCmd.AddCommand(newStashCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))

	// Integration commands
	rootCmd.AddCommand(newMergeCmd(a))
	rootCmd.AddCommand(newRebaseCmd(a))
	rootCmd.AddCommand(newApplyCmd(a))

	// Config commands
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// needsRepo reports whether cmd operates on a repository. Help, completion
// and config commands work anywhere.
func needsRepo(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "help", "config":
			return false
		}
	}
	return cmd.HasParent()
}

// open resolves the repository root, merges its local config and builds the
// services. It is idempotent.
func (a *app) open(ctx context.Context) error {
	if a.repo != "" {
		return nil
	}

	a.engine = git.NewEngine(cmd.NewRunner(), git.WithBinary(a.cfg.Git))

	dir, err := filepath.Abs(a.repoDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", a.repoDir, err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", a.repoDir)
	}
	root, err := a.engine.RepoRoot(ctx, dir)
	if err != nil {
		return err
	}

	local, err := config.LoadLocal(root)
	if err != nil {
		return err
	}
	a.cfg = config.MergeLocal(a.cfg, local)
	a.repo = root

	a.tags = service.NewTagService(a.engine, service.WithTTL(a.cfg.Cache.TagTTL))
	a.stashes = service.NewStashService(a.engine, service.WithTTL(a.cfg.Cache.StashTTL))
	a.merges = service.NewMergeService(a.engine)
	a.patches = service.NewPatchService(a.engine)

	log.FromContext(ctx).Debug("repository", "root", root, "tag_ttl", a.cfg.Cache.TagTTL, "stash_ttl", a.cfg.Cache.StashTTL)
	return nil
}
