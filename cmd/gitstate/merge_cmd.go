package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/hooks"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
	"github.com/raphi011/gitstate/internal/ui/static"
)

func newMergeCmd(a *app) *cobra.Command {
	var (
		opts git.MergeOptions
		hf   hookFlags
	)

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Long: `Merge a branch into the current branch.

When the merge stops on conflicts, the conflicted files are listed and git
is left mid-merge: resolve and commit, or run 'gitstate merge abort'.

merge.no_ff in the config makes --no-ff the default.`,
		GroupID: GroupIntegrate,
		Args:    cobra.ExactArgs(1),
		Example: `  gitstate merge feature          # Merge feature into the current branch
  gitstate merge feature --no-ff  # Always create a merge commit
  gitstate merge feature --squash # Stage the changes without committing
  gitstate merge abort            # Abandon a conflicted merge`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.Branch = args[0]
			if !cmd.Flags().Changed("no-ff") && !opts.Squash {
				opts.NoFastForward = a.cfg.Merge.NoFastForward
			}

			pending, err := a.selectHooks(&hf, hooks.TriggerMerge, a.stdin)
			if err != nil {
				return err
			}

			if err := a.merges.Merge(ctx, a.repo, opts); err != nil {
				a.reportConflicts(ctx, err, "merge")
				return err
			}
			output.FromContext(ctx).Printf("Merged %s\n", opts.Branch)

			pending.run(ctx, a, hooks.TriggerMerge, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.NoFastForward, "no-ff", false, "Create a merge commit even when fast-forward is possible")
	cmd.Flags().BoolVar(&opts.Squash, "squash", false, "Stage the merged changes without committing")
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Merge commit message")
	cmd.MarkFlagsMutuallyExclusive("no-ff", "squash")
	a.addHookFlags(cmd, &hf)

	cmd.AddCommand(&cobra.Command{
		Use:   "abort",
		Short: "Abandon an in-progress merge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.merges.MergeAbort(ctx, a.repo); err != nil {
				return err
			}
			output.FromContext(ctx).Println("Merge aborted")
			return nil
		},
	})

	return cmd
}

func newRebaseCmd(a *app) *cobra.Command {
	var (
		opts git.RebaseOptions
		hf   hookFlags
	)

	cmd := &cobra.Command{
		Use:   "rebase <onto>",
		Short: "Rebase the current branch",
		Long: `Replay the current branch onto another revision.

When a commit does not apply, the conflicted files are listed and git is
left mid-rebase: resolve, stage and run 'gitstate rebase continue', or
run 'gitstate rebase abort' to restore the original branch.

rebase.autostash in the config makes --autostash the default.`,
		GroupID: GroupIntegrate,
		Args:    cobra.ExactArgs(1),
		Example: `  gitstate rebase main              # Rebase onto main
  gitstate rebase main --autostash  # Stash local changes around the rebase
  gitstate rebase continue          # Resume after resolving conflicts
  gitstate rebase abort             # Restore the original branch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.Onto = args[0]
			if !cmd.Flags().Changed("autostash") {
				opts.Autostash = a.cfg.Rebase.Autostash
			}

			pending, err := a.selectHooks(&hf, hooks.TriggerRebase, a.stdin)
			if err != nil {
				return err
			}

			if err := a.merges.Rebase(ctx, a.repo, opts); err != nil {
				a.reportConflicts(ctx, err, "rebase")
				return err
			}
			output.FromContext(ctx).Printf("Rebased onto %s\n", opts.Onto)

			pending.run(ctx, a, hooks.TriggerRebase, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Autostash, "autostash", false, "Stash local changes before and restore them after the rebase")
	a.addHookFlags(cmd, &hf)

	cmd.AddCommand(newRebaseContinueCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "abort",
		Short: "Abandon an in-progress rebase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.merges.RebaseAbort(ctx, a.repo); err != nil {
				return err
			}
			output.FromContext(ctx).Println("Rebase aborted")
			return nil
		},
	})

	return cmd
}

func newRebaseContinueCmd(a *app) *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Resume a rebase after resolving conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pending, err := a.selectHooks(&hf, hooks.TriggerRebase, a.stdin)
			if err != nil {
				return err
			}

			if err := a.merges.RebaseContinue(ctx, a.repo); err != nil {
				a.reportConflicts(ctx, err, "rebase")
				return err
			}

			state, err := a.merges.State(ctx, a.repo)
			if err != nil {
				return err
			}
			if state.InProgress() {
				output.FromContext(ctx).Print(static.FormatState(state))
				return nil
			}
			output.FromContext(ctx).Println("Rebase complete")

			pending.run(ctx, a, hooks.TriggerRebase, nil)
			return nil
		},
	}

	a.addHookFlags(cmd, &hf)

	return cmd
}

// reportConflicts logs the conflicted files after an integration step
// stopped half way, with the commands that resolve it.
func (a *app) reportConflicts(ctx context.Context, err error, op string) {
	if !errors.Is(err, git.ErrApplyFailure) {
		return
	}
	state, stateErr := a.merges.State(ctx, a.repo)
	if stateErr != nil || !state.InProgress() {
		return
	}

	l := log.FromContext(ctx)
	l.Printf("%s", static.FormatState(state))
	switch op {
	case "merge":
		l.Println("Resolve the conflicts and commit, or run 'gitstate merge abort'")
	case "rebase":
		l.Println("Resolve the conflicts, stage them and run 'gitstate rebase continue', or run 'gitstate rebase abort'")
	}
}
