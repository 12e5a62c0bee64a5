package service

import (
	"context"

	"github.com/raphi011/gitstate/internal/git"
)

// PatchEngine is the part of the git engine PatchService needs.
type PatchEngine interface {
	ApplyPatch(ctx context.Context, repo string, patch []byte, opts git.ApplyOptions) error
}

// PatchService applies unified diffs to a work tree.
type PatchService struct {
	engine PatchEngine
}

// NewPatchService creates a PatchService.
func NewPatchService(engine PatchEngine) *PatchService {
	return &PatchService{engine: engine}
}

// Apply applies patch to repo. A patch that does not apply returns an error
// matching git.ErrApplyFailure.
func (s *PatchService) Apply(ctx context.Context, repo string, patch []byte, opts git.ApplyOptions) error {
	return s.engine.ApplyPatch(ctx, repo, patch, opts)
}
