package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/hooks"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
	"github.com/raphi011/gitstate/internal/ui/prompt"
	"github.com/raphi011/gitstate/internal/ui/static"
)

func newStashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stash",
		Short:   "Manage the stash stack",
		GroupID: GroupState,
		Long: `Manage the stash stack.

Entries are addressed by index (0 is the newest) or by stash@{N}.
Indices shift after every push, pop and drop; list again before
addressing another entry.

The listing is cached per repository (cache.stash_ttl, default 30s).`,
		Example: `  gitstate stash list           # List stashes
  gitstate stash push -m wip    # Stash local changes
  gitstate stash pop            # Apply and remove the newest stash
  gitstate stash apply 2        # Apply stash@{2}, keep it
  gitstate stash drop 1 -y      # Remove stash@{1} without asking
  gitstate stash show           # Show the newest stash as a patch`,
	}

	cmd.AddCommand(newStashListCmd(a))
	cmd.AddCommand(newStashPushCmd(a))
	cmd.AddCommand(newStashPopCmd(a))
	cmd.AddCommand(newStashApplyCmd(a))
	cmd.AddCommand(newStashDropCmd(a))
	cmd.AddCommand(newStashShowCmd(a))

	return cmd
}

func newStashListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List stashes",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			stashes, err := a.stashes.List(ctx, a.repo)
			if err != nil {
				return err
			}

			if a.jsonOut {
				if stashes == nil {
					stashes = []git.Stash{}
				}
				return out.JSON(stashes)
			}
			if len(stashes) == 0 {
				log.FromContext(ctx).Println("No stashes found")
				return nil
			}

			rows := make([][]string, 0, len(stashes))
			for _, s := range stashes {
				rows = append(rows, static.StashTableRow(s))
			}
			out.Print(static.RenderTable(static.StashHeaders, rows))
			return nil
		},
	}
}

func newStashPushCmd(a *app) *cobra.Command {
	var (
		opts git.StashOptions
		hf   hookFlags
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Stash local changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			pending, err := a.selectHooks(&hf, hooks.TriggerStashPush, a.stdin)
			if err != nil {
				return err
			}

			stash, err := a.stashes.Push(ctx, a.repo, opts)
			if err != nil {
				return err
			}
			if stash == nil {
				log.FromContext(ctx).Println("No local changes to save")
				return nil
			}

			if a.jsonOut {
				if err := out.JSON(stash); err != nil {
					return err
				}
			} else {
				out.Printf("Saved %s: %s\n", stash.Ref, stash.Subject)
			}

			pending.run(ctx, a, hooks.TriggerStashPush, func(h *hooks.Context) { h.Stash = stash.Ref })
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Stash message")
	cmd.Flags().BoolVarP(&opts.IncludeUntracked, "include-untracked", "u", false, "Also stash untracked files")
	cmd.Flags().BoolVarP(&opts.KeepIndex, "keep-index", "k", false, "Keep staged changes in the index")
	a.addHookFlags(cmd, &hf)

	return cmd
}

func newStashPopCmd(a *app) *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:               "pop [index]",
		Short:             "Apply a stash and remove it",
		Long:              "Apply a stash and remove it. On conflicts git keeps the entry.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeStashes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			index, err := stashIndexArg(args)
			if err != nil {
				return err
			}
			pending, err := a.selectHooks(&hf, hooks.TriggerStashPop, a.stdin)
			if err != nil {
				return err
			}

			if err := a.stashes.Pop(ctx, a.repo, index); err != nil {
				return err
			}
			output.FromContext(ctx).Printf("Popped %s\n", git.StashRef(index))

			pending.run(ctx, a, hooks.TriggerStashPop, func(h *hooks.Context) { h.Stash = git.StashRef(index) })
			return nil
		},
	}

	a.addHookFlags(cmd, &hf)

	return cmd
}

func newStashApplyCmd(a *app) *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:               "apply [index]",
		Short:             "Apply a stash and keep it",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeStashes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			index, err := stashIndexArg(args)
			if err != nil {
				return err
			}
			pending, err := a.selectHooks(&hf, hooks.TriggerStashApply, a.stdin)
			if err != nil {
				return err
			}

			if err := a.stashes.Apply(ctx, a.repo, index); err != nil {
				return err
			}
			output.FromContext(ctx).Printf("Applied %s\n", git.StashRef(index))

			pending.run(ctx, a, hooks.TriggerStashApply, func(h *hooks.Context) { h.Stash = git.StashRef(index) })
			return nil
		},
	}

	a.addHookFlags(cmd, &hf)

	return cmd
}

func newStashDropCmd(a *app) *cobra.Command {
	var (
		yes bool
		hf  hookFlags
	)

	cmd := &cobra.Command{
		Use:               "drop [index]",
		Short:             "Remove a stash",
		Long:              "Remove a stash. Asks for confirmation when run interactively unless -y is given.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeStashes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			index, err := stashIndexArg(args)
			if err != nil {
				return err
			}
			ref := git.StashRef(index)

			if !yes && isTerminal(a.stdin) {
				result, err := prompt.Confirm(fmt.Sprintf("Drop %s?", ref), a.stdin, a.stderr)
				if err != nil {
					return err
				}
				if !result.Confirmed {
					log.FromContext(ctx).Println("Aborted")
					return nil
				}
			}

			pending, err := a.selectHooks(&hf, hooks.TriggerStashDrop, a.stdin)
			if err != nil {
				return err
			}

			if err := a.stashes.Drop(ctx, a.repo, index); err != nil {
				return err
			}
			output.FromContext(ctx).Printf("Dropped %s\n", ref)

			pending.run(ctx, a, hooks.TriggerStashDrop, func(h *hooks.Context) { h.Stash = ref })
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	a.addHookFlags(cmd, &hf)

	return cmd
}

func newStashShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "show [index]",
		Short:             "Show a stash as a patch",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeStashes,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			index, err := stashIndexArg(args)
			if err != nil {
				return err
			}
			diff, err := a.stashes.Diff(ctx, a.repo, index)
			if err != nil {
				return err
			}
			output.FromContext(ctx).Print(diff)
			return nil
		},
	}
}

var stashRefArg = regexp.MustCompile(`^stash@\{(\d+)\}$`)

// stashIndexArg parses an optional "N" or "stash@{N}" argument.
// No argument means the newest entry.
func stashIndexArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	raw := args[0]
	if m := stashRefArg.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid stash index %q: %w", args[0], git.ErrInvalidArgument)
	}
	return index, nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
