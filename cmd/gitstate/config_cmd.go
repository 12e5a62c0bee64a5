package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/config"
	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage gitstate configuration.

Global config: ~/.config/gitstate/config.toml (GITSTATE_CONFIG overrides)
Local config:  .gitstate.toml (in the repository root)`,
		Example: `  gitstate config init          # Create default global config
  gitstate config init --local  # Create local repo config
  gitstate config show          # Show effective config
  gitstate config path          # Print the global config path`,
	}

	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config.
With --local, creates .gitstate.toml in the current repository root.`,
		Example: `  gitstate config init           # Create global config
  gitstate config init --local   # Create local repo config
  gitstate config init -f        # Overwrite existing config
  gitstate config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if !local {
				if stdout {
					out.Print(config.DefaultConfig())
					return nil
				}
				path, err := config.Init(force)
				if err != nil {
					if !force && strings.HasPrefix(err.Error(), "config file already exists") {
						return fmt.Errorf("%w (use -f to overwrite)", err)
					}
					return err
				}
				out.Printf("Created config file: %s\n", path)
				return nil
			}

			if stdout {
				out.Print(config.DefaultLocalConfig())
				return nil
			}
			if err := a.open(ctx); err != nil {
				return err
			}

			configPath := filepath.Join(a.repo, config.LocalConfigFileName)
			if !force {
				if _, err := os.Stat(configPath); err == nil {
					return fmt.Errorf("local config already exists: %s (use -f to overwrite)", configPath)
				}
			}
			if err := os.WriteFile(configPath, []byte(config.DefaultLocalConfig()), 0644); err != nil {
				return err
			}

			out.Printf("Created local config: %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create per-repo .gitstate.toml instead of global config")

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show effective configuration.

Inside a repository, shows the global config merged with the repository's
.gitstate.toml, marking values that come from the local file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			var local *config.LocalConfig
			var localPath string
			if git.CheckGit(a.cfg.Git) == nil && a.open(ctx) == nil {
				localPath = filepath.Join(a.repo, config.LocalConfigFileName)
				var err error
				if local, err = config.LoadLocal(a.repo); err != nil {
					l.Warnf("failed to load local config: %v", err)
				}
			}
			effCfg := a.cfg

			if a.jsonOut {
				return out.JSON(effCfg)
			}

			globalPath, err := config.Path()
			if err != nil {
				globalPath = "(unknown)"
			}
			out.Printf("Global config: %s\n", globalPath)
			if localPath != "" {
				if local != nil {
					out.Printf("Local config:  %s\n", localPath)
				} else {
					out.Printf("Local config:  (none)\n")
				}
			}
			out.Println()

			// Helper to annotate source
			source := func(isLocal bool) string {
				if isLocal {
					return " (local)"
				}
				return ""
			}

			out.Printf("git: %s\n", effCfg.Git)
			out.Printf("cache.tag_ttl: %s%s\n", effCfg.Cache.TagTTL, source(local != nil && local.Cache.TagTTL != nil))
			out.Printf("cache.stash_ttl: %s%s\n", effCfg.Cache.StashTTL, source(local != nil && local.Cache.StashTTL != nil))
			out.Printf("status.watch_interval: %s\n", effCfg.Status.WatchInterval)
			out.Printf("merge.no_ff: %v%s\n", effCfg.Merge.NoFastForward, source(local != nil && local.Merge.NoFastForward != nil))
			out.Printf("rebase.autostash: %v%s\n", effCfg.Rebase.Autostash, source(local != nil && local.Rebase.Autostash != nil))

			names := make([]string, 0, len(effCfg.Hooks.Hooks))
			for name := range effCfg.Hooks.Hooks {
				names = append(names, name)
			}
			slices.Sort(names)
			out.Printf("hooks: %d configured\n", len(names))
			for _, name := range names {
				hook := effCfg.Hooks.Hooks[name]
				fromLocal := false
				if local != nil {
					_, fromLocal = local.Hooks.Hooks[name]
				}
				out.Printf("  %s: on=%v%s\n", name, hook.On, source(fromLocal))
			}

			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the global config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Println(path)
			return nil
		},
	}
}
