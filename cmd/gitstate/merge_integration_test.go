//go:build integration

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/gitstate/internal/config"
)

// TestMerge_FastForward tests a merge that needs no merge commit.
func TestMerge_FastForward(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)

	gitRun(t, repo, "checkout", "-b", "topic")
	writeFile(t, repo, "topic.txt", "topic\n")
	gitRun(t, repo, "add", "topic.txt")
	gitRun(t, repo, "commit", "-m", "topic")
	topic := gitRun(t, repo, "rev-parse", "HEAD")
	gitRun(t, repo, "checkout", "main")

	code, stdout, stderr := gitstate(t, "", "merge", "topic")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Merged topic\n", stdout)
	assert.Equal(t, topic, gitRun(t, repo, "rev-parse", "HEAD"))
}

// TestMerge_LocalConfigNoFastForward tests merge.no_ff from .gitstate.toml.
//
// Scenario: The repo's .gitstate.toml sets merge.no_ff = true
// Expected: A fast-forwardable merge still creates a merge commit
func TestMerge_LocalConfigNoFastForward(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	writeFile(t, repo, config.LocalConfigFileName, "[merge]\nno_ff = true\n")

	gitRun(t, repo, "checkout", "-b", "topic")
	writeFile(t, repo, "topic.txt", "topic\n")
	gitRun(t, repo, "add", "topic.txt")
	gitRun(t, repo, "commit", "-m", "topic")
	gitRun(t, repo, "checkout", "main")

	code, _, stderr := gitstate(t, "", "merge", "topic", "-m", "Merge topic")
	require.Equal(t, 0, code, stderr)

	parents := strings.Fields(gitRun(t, repo, "rev-list", "--parents", "-n", "1", "HEAD"))
	assert.Len(t, parents, 3, "merge commit has two parents")
	assert.Equal(t, "Merge topic", gitRun(t, repo, "log", "-1", "--format=%s"))
}

// TestMerge_ConflictThenAbort tests the conflict report and abort.
//
// Scenario: User merges main into feature where both changed README.md, then aborts
// Expected: Exit 1 listing README.md as conflicted; status shows a merge; abort restores HEAD
func TestMerge_ConflictThenAbort(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	setupConflict(t, repo)
	head := gitRun(t, repo, "rev-parse", "HEAD")

	code, _, stderr := gitstate(t, "", "merge", "main")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "CONFLICT")
	assert.Contains(t, stderr, "merge in progress")
	assert.Contains(t, stderr, "README.md")
	assert.Contains(t, stderr, "gitstate merge abort")

	code, stdout, stderr := gitstate(t, "", "--json", "status")
	require.Equal(t, 0, code, stderr)
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "merge", string(report.State.Operation))
	assert.Equal(t, []string{"README.md"}, report.State.Conflicts)

	code, stdout, stderr = gitstate(t, "", "merge", "abort")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Merge aborted\n", stdout)
	assert.Equal(t, head, gitRun(t, repo, "rev-parse", "HEAD"))
	assert.Equal(t, "# feature\n", readFile(t, repo, "README.md"))
}

// TestMerge_AbortWithoutMerge tests aborting when nothing is in progress.
func TestMerge_AbortWithoutMerge(t *testing.T) {
	setupEnv(t)
	setupTestRepo(t)

	code, _, stderr := gitstate(t, "", "merge", "abort")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "MERGE_HEAD")
}

// TestRebase_ConflictContinue tests resolving a rebase conflict.
//
// Scenario: User rebases feature onto main, resolves README.md, stages it and continues
// Expected: The rebase completes and feature sits on top of main
func TestRebase_ConflictContinue(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	setupConflict(t, repo)
	mainHead := gitRun(t, repo, "rev-parse", "main")

	code, _, stderr := gitstate(t, "", "rebase", "main")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "rebase in progress")
	assert.Contains(t, stderr, "gitstate rebase continue")

	// Continuing with the conflict unresolved fails again
	code, _, _ = gitstate(t, "", "rebase", "continue")
	assert.Equal(t, 1, code)

	writeFile(t, repo, "README.md", "# resolved\n")
	gitRun(t, repo, "add", "README.md")

	code, stdout, stderr := gitstate(t, "", "rebase", "continue")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Rebase complete\n", stdout)
	assert.Equal(t, mainHead, gitRun(t, repo, "rev-parse", "HEAD~1"))
	assert.Equal(t, "feature", gitRun(t, repo, "branch", "--show-current"))
}

// TestRebase_Abort tests that abort restores the original branch.
func TestRebase_Abort(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	setupConflict(t, repo)
	head := gitRun(t, repo, "rev-parse", "HEAD")

	code, _, _ := gitstate(t, "", "rebase", "main")
	require.Equal(t, 1, code)

	code, stdout, stderr := gitstate(t, "", "rebase", "abort")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Rebase aborted\n", stdout)
	assert.Equal(t, head, gitRun(t, repo, "rev-parse", "HEAD"))
	assert.Equal(t, "feature", gitRun(t, repo, "branch", "--show-current"))
}

// TestApply_FileAndStdin tests applying a patch from a file and from stdin.
//
// Scenario: A diff is captured, the change reverted, then applied with --check, from a file, and reversed from stdin
// Expected: --check leaves the tree alone, apply restores the change, -R - reverts it
func TestApply_FileAndStdin(t *testing.T) {
	home := setupEnv(t)
	repo := setupTestRepo(t)

	writeFile(t, repo, "README.md", "# patched\n")
	patch := gitRun(t, repo, "diff") + "\n"
	gitRun(t, repo, "checkout", "--", "README.md")

	patchFile := filepath.Join(home, "fix.patch")
	require.NoError(t, os.WriteFile(patchFile, []byte(patch), 0644))

	code, stdout, stderr := gitstate(t, "", "apply", "--check", patchFile)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Patch applies cleanly\n", stdout)
	assert.Equal(t, "# test\n", readFile(t, repo, "README.md"))

	code, stdout, stderr = gitstate(t, "", "apply", patchFile)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Patch applied\n", stdout)
	assert.Equal(t, "# patched\n", readFile(t, repo, "README.md"))

	code, _, stderr = gitstate(t, patch, "apply", "-R", "-")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "# test\n", readFile(t, repo, "README.md"))
}

// TestApply_DoesNotApply tests a patch whose context is missing.
func TestApply_DoesNotApply(t *testing.T) {
	home := setupEnv(t)
	repo := setupTestRepo(t)

	writeFile(t, repo, "README.md", "# patched\n")
	patch := gitRun(t, repo, "diff") + "\n"
	gitRun(t, repo, "commit", "-am", "already patched")

	patchFile := filepath.Join(home, "fix.patch")
	require.NoError(t, os.WriteFile(patchFile, []byte(patch), 0644))

	code, _, stderr := gitstate(t, "", "apply", patchFile)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "patch does not apply")
}
