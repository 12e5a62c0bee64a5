package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// stateMarkers are the files git leaves in the git dir while an operation
// is interrupted, checked in order.
var stateMarkers = []struct {
	path string
	op   Operation
}{
	{"rebase-merge", RebaseInProgress},
	{"rebase-apply", RebaseInProgress},
	{"MERGE_HEAD", MergeInProgress},
	{"CHERRY_PICK_HEAD", CherryPickInProgress},
	{"REVERT_HEAD", RevertInProgress},
}

// Merge merges a branch into the current branch. A merge that stops on
// conflicts leaves git in MergeInProgress and returns *ApplyError.
func (e *Engine) Merge(ctx context.Context, repo string, opts MergeOptions) error {
	if err := validRefArg("branch", opts.Branch); err != nil {
		return err
	}

	args := []string{"merge", "--no-edit"}
	if opts.NoFastForward {
		args = append(args, "--no-ff")
	}
	if opts.Squash {
		args = append(args, "--squash")
	}
	if opts.Message != "" {
		args = append(args, "-m", opts.Message)
	}
	args = append(args, opts.Branch)

	return e.integrate(ctx, repo, "merge", args...)
}

// MergeAbort abandons an in-progress merge.
func (e *Engine) MergeAbort(ctx context.Context, repo string) error {
	_, err := e.output(ctx, repo, "merge", "--abort")
	return err
}

// Rebase replays the current branch onto another. Conflicts leave git in
// RebaseInProgress and return *ApplyError.
func (e *Engine) Rebase(ctx context.Context, repo string, opts RebaseOptions) error {
	if err := validRefArg("rebase target", opts.Onto); err != nil {
		return err
	}

	args := []string{"rebase"}
	if opts.Autostash {
		args = append(args, "--autostash")
	}
	args = append(args, opts.Onto)

	return e.integrate(ctx, repo, "rebase", args...)
}

// RebaseContinue resumes a rebase after conflicts were resolved.
func (e *Engine) RebaseContinue(ctx context.Context, repo string) error {
	return e.integrate(ctx, repo, "rebase --continue", "-c", "core.editor=true", "rebase", "--continue")
}

// RebaseAbort abandons an in-progress rebase and restores the original branch.
func (e *Engine) RebaseAbort(ctx context.Context, repo string) error {
	_, err := e.output(ctx, repo, "rebase", "--abort")
	return err
}

// State reports the operation git currently has in progress and the paths
// with unresolved conflicts, read fresh from disk.
func (e *Engine) State(ctx context.Context, repo string) (RepoState, error) {
	args := []string{"rev-parse"}
	for _, m := range stateMarkers {
		args = append(args, "--git-path", m.path)
	}
	out, err := e.output(ctx, repo, args...)
	if err != nil {
		return RepoState{}, err
	}

	paths := lines(out)
	if len(paths) != len(stateMarkers) {
		return RepoState{}, &ParseError{
			Command: "rev-parse",
			Input:   out,
			Reason:  fmt.Sprintf("expected %d paths, got %d", len(stateMarkers), len(paths)),
		}
	}

	state := RepoState{Operation: Clean}
	for i, m := range stateMarkers {
		p := paths[i]
		if !filepath.IsAbs(p) {
			p = filepath.Join(repo, p)
		}
		if _, err := os.Stat(p); err == nil {
			state.Operation = m.op
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return RepoState{}, fmt.Errorf("stat %s: %w", p, err)
		}
	}

	out, err = e.output(ctx, repo, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return RepoState{}, err
	}
	state.Conflicts = lines(out)

	return state, nil
}
