package service

import (
	"context"
	"time"

	"github.com/raphi011/gitstate/internal/git"
)

// StashEngine is the part of the git engine StashService needs.
type StashEngine interface {
	ListStashes(ctx context.Context, repo string) ([]git.Stash, error)
	PushStash(ctx context.Context, repo string, opts git.StashOptions) (*git.Stash, error)
	PopStash(ctx context.Context, repo string, index int) error
	ApplyStash(ctx context.Context, repo string, index int) error
	DropStash(ctx context.Context, repo string, index int) error
	StashDiff(ctx context.Context, repo string, index int) (string, error)
}

// StashService lists and mutates the stash stack, caching the listing per
// repository.
//
// Indices are passed to git as given on every call. They are positional and
// shift after a push, pop or drop, so callers should list again after a
// mutation before addressing another entry.
type StashService struct {
	engine StashEngine
	cache  *cachedList[git.Stash]
}

// NewStashService creates a StashService. The listing is cached for
// DefaultStashTTL unless WithTTL says otherwise.
func NewStashService(engine StashEngine, opts ...Option) *StashService {
	o := buildOptions(DefaultStashTTL, opts)
	return &StashService{
		engine: engine,
		cache:  newCachedList("stashes", o, engine.ListStashes),
	}
}

// TTL returns how long a stash listing is served from cache.
func (s *StashService) TTL() time.Duration {
	return s.cache.ttl
}

// List returns the stash stack of repo, newest first.
func (s *StashService) List(ctx context.Context, repo string) ([]git.Stash, error) {
	return s.cache.get(ctx, repo)
}

// Push stashes local changes. It returns nil without error when there was
// nothing to stash, and the cached listing stays valid.
func (s *StashService) Push(ctx context.Context, repo string, opts git.StashOptions) (*git.Stash, error) {
	stash, err := s.engine.PushStash(ctx, repo, opts)
	if err == nil && stash == nil {
		return nil, nil
	}
	s.cache.settle(ctx, repo, err)
	if err != nil {
		return nil, err
	}
	return stash, nil
}

// Pop applies the stash at index and removes it from the stack.
// On conflicts git keeps the entry and the listing stays cached.
func (s *StashService) Pop(ctx context.Context, repo string, index int) error {
	err := s.engine.PopStash(ctx, repo, index)
	s.cache.settle(ctx, repo, err)
	return err
}

// Apply applies the stash at index and keeps it. The stack is unchanged,
// so the cached listing stays valid.
func (s *StashService) Apply(ctx context.Context, repo string, index int) error {
	return s.engine.ApplyStash(ctx, repo, index)
}

// Drop removes the stash at index.
func (s *StashService) Drop(ctx context.Context, repo string, index int) error {
	err := s.engine.DropStash(ctx, repo, index)
	s.cache.settle(ctx, repo, err)
	return err
}

// Diff returns the patch recorded by the stash at index. It is not cached.
func (s *StashService) Diff(ctx context.Context, repo string, index int) (string, error) {
	return s.engine.StashDiff(ctx, repo, index)
}

// Invalidate drops the cached listing of repo.
func (s *StashService) Invalidate(ctx context.Context, repo string) {
	s.cache.invalidate(ctx, repo)
}
