package git

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// setupDivergedRepo creates main and feature branches that both changed
// file.txt, so merging or rebasing one onto the other conflicts.
// feature is checked out on return.
func setupDivergedRepo(t *testing.T) string {
	t.Helper()
	repo := setupTestRepo(t)
	commitFile(t, repo, "file.txt", "base\n", "Add file")
	gitRun(t, repo, "checkout", "-b", "feature")
	commitFile(t, repo, "file.txt", "feature\n", "Feature change")
	gitRun(t, repo, "checkout", "main")
	commitFile(t, repo, "file.txt", "main\n", "Main change")
	gitRun(t, repo, "checkout", "feature")
	return repo
}

func TestState_Clean(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)

	state, err := newTestEngine().State(testCtx(), repo)
	if err != nil {
		t.Fatalf("State = %v", err)
	}
	if state.Operation != Clean || state.InProgress() || len(state.Conflicts) != 0 {
		t.Errorf("State = %+v, want clean", state)
	}
}

func TestMerge_FastForward(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)
	e := newTestEngine()
	ctx := testCtx()

	gitRun(t, repo, "checkout", "-b", "topic")
	commitFile(t, repo, "topic.txt", "topic\n", "Topic")
	gitRun(t, repo, "checkout", "main")

	if err := e.Merge(ctx, repo, MergeOptions{Branch: "topic"}); err != nil {
		t.Fatalf("Merge = %v", err)
	}
	if got := readFile(t, repo, "topic.txt"); got != "topic\n" {
		t.Errorf("topic.txt = %q", got)
	}
	state, err := e.State(ctx, repo)
	if err != nil {
		t.Fatalf("State = %v", err)
	}
	if state.InProgress() {
		t.Errorf("State after fast-forward = %+v, want clean", state)
	}
}

func TestMerge_NoFastForwardCreatesMergeCommit(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)

	gitRun(t, repo, "checkout", "-b", "topic")
	commitFile(t, repo, "topic.txt", "topic\n", "Topic")
	gitRun(t, repo, "checkout", "main")

	err := newTestEngine().Merge(testCtx(), repo, MergeOptions{Branch: "topic", NoFastForward: true, Message: "Merge topic"})
	if err != nil {
		t.Fatalf("Merge = %v", err)
	}
	parents := strings.Fields(gitRun(t, repo, "log", "-1", "--format=%P"))
	if len(parents) != 2 {
		t.Errorf("HEAD has %d parents, want merge commit", len(parents))
	}
	if subject := gitRun(t, repo, "log", "-1", "--format=%s"); subject != "Merge topic" {
		t.Errorf("merge subject = %q", subject)
	}
}

func TestMerge_ConflictThenAbort(t *testing.T) {
	t.Parallel()
	repo := setupDivergedRepo(t)
	e := newTestEngine()
	ctx := testCtx()
	before := gitRun(t, repo, "rev-parse", "HEAD")

	err := e.Merge(ctx, repo, MergeOptions{Branch: "main"})
	if !errors.Is(err, ErrApplyFailure) {
		t.Fatalf("Merge(conflict) = %v, want ErrApplyFailure", err)
	}
	if !strings.Contains(err.Error(), "CONFLICT") {
		t.Errorf("error %q does not carry git's conflict text", err)
	}

	state, err := e.State(ctx, repo)
	if err != nil {
		t.Fatalf("State = %v", err)
	}
	if state.Operation != MergeInProgress {
		t.Errorf("Operation = %q, want %q", state.Operation, MergeInProgress)
	}
	if !reflect.DeepEqual(state.Conflicts, []string{"file.txt"}) {
		t.Errorf("Conflicts = %v, want [file.txt]", state.Conflicts)
	}

	if err := e.MergeAbort(ctx, repo); err != nil {
		t.Fatalf("MergeAbort = %v", err)
	}
	state, err = e.State(ctx, repo)
	if err != nil {
		t.Fatalf("State = %v", err)
	}
	if state.InProgress() {
		t.Errorf("State after abort = %+v, want clean", state)
	}
	if after := gitRun(t, repo, "rev-parse", "HEAD"); after != before {
		t.Errorf("HEAD moved from %s to %s", before, after)
	}
}

func TestMergeAbort_NothingInProgress(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)
	err := newTestEngine().MergeAbort(testCtx(), repo)
	if !errors.Is(err, ErrToolFailure) {
		t.Errorf("MergeAbort(clean) = %v, want ErrToolFailure", err)
	}
}

func TestMerge_UnknownBranch(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)
	err := newTestEngine().Merge(testCtx(), repo, MergeOptions{Branch: "does-not-exist"})
	if !errors.Is(err, ErrToolFailure) {
		t.Errorf("Merge(unknown) = %v, want ErrToolFailure", err)
	}
}

func TestRebase_ConflictContinueAbort(t *testing.T) {
	t.Parallel()
	repo := setupDivergedRepo(t)
	e := newTestEngine()
	ctx := testCtx()
	before := gitRun(t, repo, "rev-parse", "HEAD")

	err := e.Rebase(ctx, repo, RebaseOptions{Onto: "main"})
	if !errors.Is(err, ErrApplyFailure) {
		t.Fatalf("Rebase(conflict) = %v, want ErrApplyFailure", err)
	}

	state, err := e.State(ctx, repo)
	if err != nil {
		t.Fatalf("State = %v", err)
	}
	if state.Operation != RebaseInProgress {
		t.Errorf("Operation = %q, want %q", state.Operation, RebaseInProgress)
	}

	err = e.RebaseContinue(ctx, repo)
	if !errors.Is(err, ErrApplyFailure) {
		t.Fatalf("RebaseContinue(unresolved) = %v, want ErrApplyFailure", err)
	}
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) || applyErr.Message == "" {
		t.Errorf("ApplyError without git message: %v", err)
	}

	if err := e.RebaseAbort(ctx, repo); err != nil {
		t.Fatalf("RebaseAbort = %v", err)
	}

	branch, err := e.CurrentBranch(ctx, repo)
	if err != nil {
		t.Fatalf("CurrentBranch = %v", err)
	}
	if branch != "feature" {
		t.Errorf("branch after abort = %q, want feature", branch)
	}
	if after := gitRun(t, repo, "rev-parse", "HEAD"); after != before {
		t.Errorf("HEAD = %s after abort, want %s", after, before)
	}
	if got := readFile(t, repo, "file.txt"); got != "feature\n" {
		t.Errorf("file.txt = %q after abort, want feature content", got)
	}
}

func TestRebase_ResolvedContinue(t *testing.T) {
	t.Parallel()
	repo := setupDivergedRepo(t)
	e := newTestEngine()
	ctx := testCtx()

	if err := e.Rebase(ctx, repo, RebaseOptions{Onto: "main"}); !errors.Is(err, ErrApplyFailure) {
		t.Fatalf("Rebase = %v, want conflict", err)
	}

	writeFile(t, repo, "file.txt", "resolved\n")
	gitRun(t, repo, "add", "file.txt")

	if err := e.RebaseContinue(ctx, repo); err != nil {
		t.Fatalf("RebaseContinue = %v", err)
	}
	state, err := e.State(ctx, repo)
	if err != nil {
		t.Fatalf("State = %v", err)
	}
	if state.InProgress() {
		t.Errorf("State = %+v after continue, want clean", state)
	}
}

func TestRebaseContinue_NothingInProgress(t *testing.T) {
	t.Parallel()
	repo := setupTestRepo(t)
	err := newTestEngine().RebaseContinue(testCtx(), repo)
	if !errors.Is(err, ErrToolFailure) {
		t.Errorf("RebaseContinue(clean) = %v, want ErrToolFailure", err)
	}
}
