package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/hooks"
	"github.com/raphi011/gitstate/internal/output"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		opts git.ApplyOptions
		hf   hookFlags
	)

	cmd := &cobra.Command{
		Use:   "apply <patch-file|->",
		Short: "Apply a patch to the work tree",
		Long: `Apply a unified diff to the work tree.

Use - to read the patch from stdin. With --check nothing is changed; the
command only reports whether the patch would apply.`,
		GroupID: GroupIntegrate,
		Args:    cobra.ExactArgs(1),
		Example: `  gitstate apply fix.patch            # Apply to the work tree
  gitstate apply fix.patch --index    # Apply to work tree and index
  gitstate apply fix.patch --check    # Only check
  git diff main | gitstate apply -R - # Revert changes read from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// stdin carries the patch, so KEY=- hook args cannot read it
			hookStdin := a.stdin
			var patch []byte
			var err error
			if args[0] == "-" {
				if isTerminal(a.stdin) {
					return fmt.Errorf("no patch on stdin: %w", git.ErrInvalidArgument)
				}
				patch, err = io.ReadAll(a.stdin)
				hookStdin = strings.NewReader("")
			} else {
				patch, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read patch: %w", err)
			}

			trigger := hooks.TriggerApply
			var pending *pendingHooks
			if !opts.Check {
				if pending, err = a.selectHooks(&hf, trigger, hookStdin); err != nil {
					return err
				}
			}

			if err := a.patches.Apply(ctx, a.repo, patch, opts); err != nil {
				return err
			}

			out := output.FromContext(ctx)
			if opts.Check {
				out.Println("Patch applies cleanly")
				return nil
			}
			out.Println("Patch applied")

			pending.run(ctx, a, trigger, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "Only check whether the patch applies")
	cmd.Flags().BoolVar(&opts.ThreeWay, "3way", false, "Fall back to a three-way merge")
	cmd.Flags().BoolVar(&opts.Index, "index", false, "Apply to the index as well")
	cmd.Flags().BoolVarP(&opts.Reverse, "reverse", "R", false, "Apply the patch in reverse")
	a.addHookFlags(cmd, &hf)

	return cmd
}
