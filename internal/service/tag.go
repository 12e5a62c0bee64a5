package service

import (
	"context"
	"fmt"
	"time"

	"github.com/raphi011/gitstate/internal/git"
)

// TagEngine is the part of the git engine TagService needs.
type TagEngine interface {
	ListTags(ctx context.Context, repo string) ([]git.Tag, error)
	CreateTag(ctx context.Context, repo string, opts git.TagOptions) (*git.Tag, error)
	DeleteTag(ctx context.Context, repo, name string) error
}

// TagService lists and mutates tags, caching the listing per repository.
type TagService struct {
	engine TagEngine
	cache  *cachedList[git.Tag]
}

// NewTagService creates a TagService. The listing is cached for
// DefaultTagTTL unless WithTTL says otherwise.
func NewTagService(engine TagEngine, opts ...Option) *TagService {
	o := buildOptions(DefaultTagTTL, opts)
	return &TagService{
		engine: engine,
		cache:  newCachedList("tags", o, engine.ListTags),
	}
}

// TTL returns how long a tag listing is served from cache.
func (s *TagService) TTL() time.Duration {
	return s.cache.ttl
}

// List returns all tags of repo.
func (s *TagService) List(ctx context.Context, repo string) ([]git.Tag, error) {
	return s.cache.get(ctx, repo)
}

// Get returns the tag called name, served from the cached listing.
func (s *TagService) Get(ctx context.Context, repo, name string) (*git.Tag, error) {
	tags, err := s.List(ctx, repo)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].Name == name {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", name, git.ErrNotFound)
}

// Create creates a tag and invalidates the listing once git created it, even
// when the lookup of the new tag fails afterwards.
func (s *TagService) Create(ctx context.Context, repo string, opts git.TagOptions) (*git.Tag, error) {
	tag, err := s.engine.CreateTag(ctx, repo, opts)
	s.cache.settle(ctx, repo, err)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete deletes a tag and invalidates the listing on success.
func (s *TagService) Delete(ctx context.Context, repo, name string) error {
	err := s.engine.DeleteTag(ctx, repo, name)
	s.cache.settle(ctx, repo, err)
	return err
}

// Invalidate drops the cached listing of repo.
func (s *TagService) Invalidate(ctx context.Context, repo string) {
	s.cache.invalidate(ctx, repo)
}
