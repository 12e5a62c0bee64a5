package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/ttlcache"
)

// cachedList keeps one TTL cache per repository for a git listing.
type cachedList[T any] struct {
	kind  string
	ttl   time.Duration
	now   func() time.Time
	fetch func(ctx context.Context, repo string) ([]T, error)

	mu     sync.Mutex
	caches map[string]*ttlcache.Cache[[]T]
	flight singleflight.Group
}

func newCachedList[T any](kind string, o options, fetch func(context.Context, string) ([]T, error)) *cachedList[T] {
	return &cachedList[T]{
		kind:   kind,
		ttl:    o.ttl,
		now:    o.now,
		fetch:  fetch,
		caches: make(map[string]*ttlcache.Cache[[]T]),
	}
}

// slot returns the cache for repo. c.mu must be held.
func (c *cachedList[T]) slot(repo string) *ttlcache.Cache[[]T] {
	s, ok := c.caches[repo]
	if !ok {
		s = ttlcache.New[[]T](c.ttl, ttlcache.WithClock(c.now))
		c.caches[repo] = s
	}
	return s
}

// get returns the cached listing for repo, fetching it on a miss.
// The returned slice is a copy the caller may modify.
func (c *cachedList[T]) get(ctx context.Context, repo string) ([]T, error) {
	l := log.FromContext(ctx)
	key := repoKey(repo)

	c.mu.Lock()
	s := c.slot(key)
	if items, ok := s.Get(); ok {
		c.mu.Unlock()
		l.Debug("cache hit", "cache", c.kind, "repo", key)
		return slices.Clone(items), nil
	}
	gen := s.Generation()
	c.mu.Unlock()

	l.Debug("cache miss", "cache", c.kind, "repo", key)

	// The fetch outlives a cancelled caller so callers that joined it still
	// get a result.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(fmt.Sprintf("%s@%d", key, gen), func() (any, error) {
		items, err := c.fetch(fetchCtx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		stored := c.slot(key).SetIfGeneration(gen, items)
		c.mu.Unlock()
		if !stored {
			l.Debug("cache discard", "cache", c.kind, "repo", key, "reason", "invalidated during fetch")
		}
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			l.Debug("cache fetch shared", "cache", c.kind, "repo", key)
		}
		return slices.Clone(r.Val.([]T)), nil
	}
}

// invalidate drops the listing for repo so the next get refetches.
func (c *cachedList[T]) invalidate(ctx context.Context, repo string) {
	key := repoKey(repo)

	c.mu.Lock()
	c.slot(key).Invalidate()
	c.mu.Unlock()

	log.FromContext(ctx).Debug("cache invalidate", "cache", c.kind, "repo", key)
}

// settle invalidates the listing for repo after a mutation returned err,
// unless err shows git changed nothing.
func (c *cachedList[T]) settle(ctx context.Context, repo string, err error) {
	if err != nil && !mayHaveMutated(err) {
		return
	}
	c.invalidate(ctx, repo)
}

// mayHaveMutated reports whether a failed mutation could still have changed
// the repository. git refusing the change, failing to start or never being
// called leaves it untouched. Anything else, such as a failed follow-up
// lookup or a caller abandoning a running git, may not.
func mayHaveMutated(err error) bool {
	return !errors.Is(err, git.ErrToolFailure) &&
		!errors.Is(err, git.ErrApplyFailure) &&
		!errors.Is(err, git.ErrInvalidArgument) &&
		!errors.Is(err, git.ErrLaunchFailure)
}

// repoKey normalizes repository paths so "repo" and "repo/" share a slot.
func repoKey(repo string) string {
	return filepath.Clean(repo)
}
