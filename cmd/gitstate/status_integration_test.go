//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/gitstate/internal/config"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
)

// TestStatus_Overview tests the one-shot status report.
//
// Scenario: A clean repo with two tags and one stash
// Expected: branch main, clean state, 2 tags, 1 stash
func TestStatus_Overview(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	gitRun(t, repo, "tag", "v1")
	gitRun(t, repo, "tag", "v2")
	writeFile(t, repo, "README.md", "# wip\n")
	gitRun(t, repo, "stash", "push")

	code, stdout, stderr := gitstate(t, "", "--json", "status")
	require.Equal(t, 0, code, stderr)

	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, repo, report.Repo)
	assert.Equal(t, "main", report.Branch)
	assert.Equal(t, "clean", string(report.State.Operation))
	assert.Equal(t, 2, report.Tags)
	assert.NotNil(t, report.LatestTag)
	assert.Len(t, report.Stashes, 1)

	code, stdout, stderr = gitstate(t, "", "status")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "main")
	assert.Contains(t, stdout, "clean")
	assert.Contains(t, stdout, "stashes:")
}

// TestStatus_WatchServesListingsFromCache tests watch mode.
//
// Scenario: status is refreshed several times within the tag TTL
// Expected: several reports; tags are fetched once and then served from
// cache, while the merge state is read on every refresh
func TestStatus_WatchServesListingsFromCache(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	gitRun(t, repo, "tag", "v1")

	var stdout, stderr bytes.Buffer
	cfg := config.Default()
	a := &app{stdout: &stdout, stderr: &stderr, cfg: &cfg, repoDir: repo}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	ctx = log.WithLogger(ctx, log.New(&stderr, true, false))
	ctx = output.WithPrinter(ctx, &stdout)

	require.NoError(t, a.open(ctx))
	require.NoError(t, a.watchStatus(ctx, 100*time.Millisecond))

	reports := strings.Count(stdout.String(), "branch:")
	assert.GreaterOrEqual(t, reports, 2)

	trace := stderr.String()
	assert.Equal(t, 1, strings.Count(trace, "$ git for-each-ref"), "tags fetched once")
	assert.GreaterOrEqual(t, strings.Count(trace, "cache hit cache=tags"), reports-1)
	assert.GreaterOrEqual(t, strings.Count(trace, "--git-path"), reports, "state read every refresh")
}

// TestStatus_NotARepo tests running outside a repository.
func TestStatus_NotARepo(t *testing.T) {
	home := setupEnv(t)
	testcli.Chdir(t, home)

	code, _, stderr := gitstate(t, "", "status")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not in a git repository")
}

// TestConfig_InitShowPath tests the config subcommands outside a repository.
//
// Scenario: User runs config path, init, init again, and show with GITSTATE_CONFIG set
// Expected: The file is created once, a second init is refused, show prints defaults
func TestConfig_InitShowPath(t *testing.T) {
	home := setupEnv(t)
	testcli.Chdir(t, home)
	path := home + "/gitstate.toml"

	code, stdout, stderr := gitstate(t, "", "config", "path")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, path+"\n", stdout)

	code, stdout, stderr = gitstate(t, "", "config", "init")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Created config file: "+path+"\n", stdout)
	assert.FileExists(t, path)

	code, _, stderr = gitstate(t, "", "config", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "use -f to overwrite")

	code, stdout, stderr = gitstate(t, "", "config", "show")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "cache.tag_ttl: 2m0s\n")
	assert.Contains(t, stdout, "cache.stash_ttl: 30s\n")
	assert.NotContains(t, stdout, "Local config:")
}

// TestConfig_ShowLocal tests that local overrides are marked.
func TestConfig_ShowLocal(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	writeFile(t, repo, config.LocalConfigFileName, "[cache]\ntag_ttl = \"5s\"\n")

	code, stdout, stderr := gitstate(t, "", "config", "show")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Local config:  "+repo+"/"+config.LocalConfigFileName+"\n")
	assert.Contains(t, stdout, "cache.tag_ttl: 5s (local)\n")
	assert.Contains(t, stdout, "cache.stash_ttl: 30s\n")
}

// TestConfig_EnvOverride tests GITSTATE_TAG_TTL.
func TestConfig_EnvOverride(t *testing.T) {
	home := setupEnv(t)
	testcli.Chdir(t, home)
	t.Setenv("GITSTATE_TAG_TTL", "7s")

	code, stdout, stderr := gitstate(t, "", "config", "show")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "cache.tag_ttl: 7s\n")
}

// TestVersion tests the --version flag.
func TestVersion(t *testing.T) {
	setupEnv(t)

	code, stdout, _ := gitstate(t, "", "--version")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "gitstate dev ("), stdout)
}

// TestCompletion tests that completion scripts work outside a repository.
func TestCompletion(t *testing.T) {
	home := setupEnv(t)
	testcli.Chdir(t, home)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		code, stdout, stderr := gitstate(t, "", "completion", shell)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "gitstate", shell)
	}

	code, _, _ := gitstate(t, "", "completion", "tcsh")
	assert.Equal(t, 1, code)
}

// TestCompletion_Tags tests dynamic tag completion.
func TestCompletion_Tags(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t)
	gitRun(t, repo, "tag", "v1.0")
	gitRun(t, repo, "tag", "v2.0")
	gitRun(t, repo, "tag", "other")

	code, stdout, stderr := gitstate(t, "", "__complete", "tag", "show", "v")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "v1.0\n")
	assert.Contains(t, stdout, "v2.0\n")
	assert.NotContains(t, stdout, "other")
}
