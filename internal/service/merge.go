package service

import (
	"context"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/log"
)

// MergeEngine is the part of the git engine MergeService needs.
type MergeEngine interface {
	Merge(ctx context.Context, repo string, opts git.MergeOptions) error
	MergeAbort(ctx context.Context, repo string) error
	Rebase(ctx context.Context, repo string, opts git.RebaseOptions) error
	RebaseContinue(ctx context.Context, repo string) error
	RebaseAbort(ctx context.Context, repo string) error
	State(ctx context.Context, repo string) (git.RepoState, error)
}

// MergeService issues merge and rebase commands. It keeps no state: git's
// on-disk state is the only source of truth and State queries it each time.
type MergeService struct {
	engine MergeEngine
}

// NewMergeService creates a MergeService.
func NewMergeService(engine MergeEngine) *MergeService {
	return &MergeService{engine: engine}
}

// Merge merges opts.Branch into the current branch. On conflicts it returns
// an error matching git.ErrApplyFailure and git is left mid-merge.
func (s *MergeService) Merge(ctx context.Context, repo string, opts git.MergeOptions) error {
	log.FromContext(ctx).Debug("merge", "repo", repo, "branch", opts.Branch)
	return s.engine.Merge(ctx, repo, opts)
}

// MergeAbort abandons an in-progress merge.
func (s *MergeService) MergeAbort(ctx context.Context, repo string) error {
	return s.engine.MergeAbort(ctx, repo)
}

// Rebase replays the current branch onto opts.Onto.
func (s *MergeService) Rebase(ctx context.Context, repo string, opts git.RebaseOptions) error {
	log.FromContext(ctx).Debug("rebase", "repo", repo, "onto", opts.Onto)
	return s.engine.Rebase(ctx, repo, opts)
}

// RebaseContinue resumes a rebase after conflicts were resolved and staged.
func (s *MergeService) RebaseContinue(ctx context.Context, repo string) error {
	return s.engine.RebaseContinue(ctx, repo)
}

// RebaseAbort abandons an in-progress rebase and restores the original branch.
func (s *MergeService) RebaseAbort(ctx context.Context, repo string) error {
	return s.engine.RebaseAbort(ctx, repo)
}

// State reports the operation git currently has in progress, if any.
func (s *MergeService) State(ctx context.Context, repo string) (git.RepoState, error) {
	return s.engine.State(ctx, repo)
}
