package main

import (
	"context"
	"io"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/hooks"
)

// hookFlags are the --hook, --no-hook and --arg flags shared by mutations.
type hookFlags struct {
	name   string
	noHook bool
	env    []string
}

func (a *app) addHookFlags(cmd *cobra.Command, hf *hookFlags) {
	cmd.Flags().StringVar(&hf.name, "hook", "", "Run only the named hook")
	cmd.Flags().BoolVar(&hf.noHook, "no-hook", false, "Skip hooks")
	cmd.Flags().StringSliceVarP(&hf.env, "arg", "a", nil, "Set hook variable KEY=VALUE (KEY=- reads stdin)")
	cmd.MarkFlagsMutuallyExclusive("hook", "no-hook")
	cmd.RegisterFlagCompletionFunc("hook", a.completeHooks)
}

// pendingHooks are hooks selected before a mutation and run after it
// succeeded.
type pendingHooks struct {
	matches []hooks.HookMatch
	env     map[string]string
}

// selectHooks resolves the hooks for trigger. It runs before the mutation
// so an unknown --hook or a malformed --arg fails without side effects.
// stdin is read only for KEY=- arguments.
func (a *app) selectHooks(hf *hookFlags, trigger hooks.Trigger, stdin io.Reader) (*pendingHooks, error) {
	matches, err := hooks.SelectHooks(a.cfg.Hooks, hf.name, hf.noHook, trigger)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &pendingHooks{}, nil
	}
	env, err := hooks.ParseEnvWithStdin(hf.env, stdin)
	if err != nil {
		return nil, err
	}
	return &pendingHooks{matches: matches, env: env}, nil
}

// run executes the pending hooks. Failures are logged, not returned: the
// mutation already happened.
func (p *pendingHooks) run(ctx context.Context, a *app, trigger hooks.Trigger, fill func(*hooks.Context)) {
	if len(p.matches) == 0 {
		return
	}

	branch, _ := a.engine.CurrentBranch(ctx, a.repo)
	hctx := hooks.Context{
		Repo:    a.repo,
		Folder:  filepath.Base(a.repo),
		Branch:  branch,
		Trigger: trigger,
		Env:     p.env,
	}
	if fill != nil {
		fill(&hctx)
	}

	hooks.RunAllNonFatal(ctx, p.matches, hctx, a.stdout)
}

// completeHooks provides completion for hook flags
func (a *app) completeHooks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for name := range a.cfg.Hooks.Hooks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}
