package service

import (
	"context"
	"sync"
	"time"

	"github.com/raphi011/gitstate/internal/git"
)

// fakeEngine is an in-memory git engine that counts listing calls.
type fakeEngine struct {
	mu        sync.Mutex
	tags      map[string][]git.Tag
	stashes   map[string][]git.Stash
	tagLists  int
	stashList int
	calls     []string

	// listHook, when set, runs inside ListTags/ListStashes before the
	// result is returned.
	listHook func()
	failNext error
	state    git.RepoState

	// failAfter is returned by the next CreateTag or PushStash after the
	// change has been made.
	failAfter error
	// cleanTree makes PushStash report nothing to save.
	cleanTree bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		tags:    make(map[string][]git.Tag),
		stashes: make(map[string][]git.Stash),
	}
}

func (f *fakeEngine) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeEngine) takeFailureAfter() error {
	err := f.failAfter
	f.failAfter = nil
	return err
}

func (f *fakeEngine) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeEngine) ListTags(_ context.Context, repo string) ([]git.Tag, error) {
	f.mu.Lock()
	f.tagLists++
	hook := f.listHook
	if err := f.takeFailure(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	tags := append([]git.Tag(nil), f.tags[repo]...)
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return tags, nil
}

func (f *fakeEngine) CreateTag(_ context.Context, repo string, opts git.TagOptions) (*git.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create " + opts.Name)
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	for _, t := range f.tags[repo] {
		if t.Name == opts.Name {
			return nil, &git.ToolError{Args: []string{"tag", opts.Name}, ExitCode: 128, Message: "fatal: tag '" + opts.Name + "' already exists"}
		}
	}
	tag := git.Tag{Name: opts.Name, Target: "abc123", Message: opts.Message, Annotated: opts.Message != ""}
	f.tags[repo] = append(f.tags[repo], tag)
	if err := f.takeFailureAfter(); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (f *fakeEngine) DeleteTag(_ context.Context, repo, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete " + name)
	if err := f.takeFailure(); err != nil {
		return err
	}
	tags := f.tags[repo]
	for i, t := range tags {
		if t.Name == name {
			f.tags[repo] = append(tags[:i:i], tags[i+1:]...)
			return nil
		}
	}
	return &git.ToolError{Args: []string{"tag", "-d", name}, ExitCode: 1, Message: "error: tag '" + name + "' not found."}
}

func (f *fakeEngine) ListStashes(_ context.Context, repo string) ([]git.Stash, error) {
	f.mu.Lock()
	f.stashList++
	hook := f.listHook
	if err := f.takeFailure(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	stashes := append([]git.Stash(nil), f.stashes[repo]...)
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return stashes, nil
}

func (f *fakeEngine) reindex(repo string) {
	for i := range f.stashes[repo] {
		f.stashes[repo][i].Index = i
		f.stashes[repo][i].Ref = git.StashRef(i)
	}
}

func (f *fakeEngine) PushStash(_ context.Context, repo string, opts git.StashOptions) (*git.Stash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("push " + opts.Message)
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	if f.cleanTree {
		return nil, nil
	}
	s := git.Stash{Message: opts.Message, IncludesUntracked: opts.IncludeUntracked, CreatedAt: time.Unix(0, 0)}
	f.stashes[repo] = append([]git.Stash{s}, f.stashes[repo]...)
	f.reindex(repo)
	if err := f.takeFailureAfter(); err != nil {
		return nil, err
	}
	top := f.stashes[repo][0]
	return &top, nil
}

func (f *fakeEngine) removeStash(repo string, index int) error {
	if index < 0 || index >= len(f.stashes[repo]) {
		return &git.ToolError{Args: []string{"stash"}, ExitCode: 1, Message: "error: " + git.StashRef(index) + " is not a valid reference"}
	}
	s := f.stashes[repo]
	f.stashes[repo] = append(s[:index:index], s[index+1:]...)
	f.reindex(repo)
	return nil
}

func (f *fakeEngine) PopStash(_ context.Context, repo string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pop " + git.StashRef(index))
	if err := f.takeFailure(); err != nil {
		return err
	}
	return f.removeStash(repo, index)
}

func (f *fakeEngine) ApplyStash(_ context.Context, _ string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("apply " + git.StashRef(index))
	return f.takeFailure()
}

func (f *fakeEngine) DropStash(_ context.Context, repo string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("drop " + git.StashRef(index))
	if err := f.takeFailure(); err != nil {
		return err
	}
	return f.removeStash(repo, index)
}

func (f *fakeEngine) StashDiff(_ context.Context, repo string, index int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("diff " + git.StashRef(index))
	if index < 0 || index >= len(f.stashes[repo]) {
		return "", &git.ToolError{ExitCode: 1, Message: "not a valid reference"}
	}
	return "diff for " + f.stashes[repo][index].Message, nil
}

func (f *fakeEngine) Merge(_ context.Context, _ string, opts git.MergeOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("merge " + opts.Branch)
	if err := f.takeFailure(); err != nil {
		f.state = git.RepoState{Operation: git.MergeInProgress, Conflicts: []string{"file.txt"}}
		return err
	}
	return nil
}

func (f *fakeEngine) MergeAbort(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("merge --abort")
	f.state = git.RepoState{Operation: git.Clean}
	return nil
}

func (f *fakeEngine) Rebase(_ context.Context, _ string, opts git.RebaseOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("rebase " + opts.Onto)
	if err := f.takeFailure(); err != nil {
		f.state = git.RepoState{Operation: git.RebaseInProgress, Conflicts: []string{"file.txt"}}
		return err
	}
	return nil
}

func (f *fakeEngine) RebaseContinue(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("rebase --continue")
	return f.takeFailure()
}

func (f *fakeEngine) RebaseAbort(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("rebase --abort")
	f.state = git.RepoState{Operation: git.Clean}
	return nil
}

func (f *fakeEngine) State(context.Context, string) (git.RepoState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("state")
	if f.state.Operation == "" {
		return git.RepoState{Operation: git.Clean}, nil
	}
	return f.state, nil
}

func (f *fakeEngine) ApplyPatch(_ context.Context, _ string, patch []byte, _ git.ApplyOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("apply-patch")
	if len(patch) == 0 {
		return git.ErrInvalidArgument
	}
	return f.takeFailure()
}

func (f *fakeEngine) failWith(err error) {
	f.mu.Lock()
	f.failNext = err
	f.mu.Unlock()
}

func (f *fakeEngine) tagListCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tagLists
}

func (f *fakeEngine) stashListCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stashList
}

func (f *fakeEngine) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
