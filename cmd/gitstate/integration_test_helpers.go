//go:build integration

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"4d63.com/testcli"
)

// setupEnv isolates the test from the user's git and gitstate config.
// Returns the temporary home directory.
func setupEnv(t *testing.T) string {
	t.Helper()

	home := resolvePath(t, testcli.MkdirTemp(t))
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_EDITOR", "true")
	t.Setenv("GITSTATE_CONFIG", filepath.Join(home, "gitstate.toml"))
	t.Setenv("GITSTATE_GIT", "")
	t.Setenv("GITSTATE_TAG_TTL", "")
	t.Setenv("GITSTATE_STASH_TTL", "")
	return home
}

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// setupTestRepo creates a git repo on branch main with one commit of
// README.md, and makes it the working directory.
// Returns the absolute path to the repo (with symlinks resolved).
func setupTestRepo(t *testing.T) string {
	t.Helper()

	repoPath := resolvePath(t, testcli.MkdirTemp(t))
	testcli.Chdir(t, repoPath)

	gitRun(t, repoPath, "init", "-b", "main")
	gitRun(t, repoPath, "config", "user.email", "test@test.com")
	gitRun(t, repoPath, "config", "user.name", "Test User")
	gitRun(t, repoPath, "config", "commit.gpgsign", "false")
	gitRun(t, repoPath, "config", "tag.gpgsign", "false")

	writeFile(t, repoPath, "README.md", "# test\n")
	gitRun(t, repoPath, "add", "README.md")
	gitRun(t, repoPath, "commit", "-m", "Initial commit")

	return repoPath
}

// setupConflict leaves repoPath on branch feature, where feature and main
// changed README.md differently.
func setupConflict(t *testing.T, repoPath string) {
	t.Helper()

	gitRun(t, repoPath, "checkout", "-b", "feature")
	writeFile(t, repoPath, "README.md", "# feature\n")
	gitRun(t, repoPath, "commit", "-am", "feature change")

	gitRun(t, repoPath, "checkout", "main")
	writeFile(t, repoPath, "README.md", "# main\n")
	gitRun(t, repoPath, "commit", "-am", "main change")

	gitRun(t, repoPath, "checkout", "feature")
}

// gitRun runs git in dir and returns trimmed stdout.
func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Fatalf("git %v failed: %v\n%s%s", args, err, out, stderr)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// gitstate runs the CLI with args and optional stdin.
func gitstate(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	return testcli.Main(t, append([]string{"gitstate"}, args...), strings.NewReader(stdin), run)
}
