package git

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/raphi011/gitstate/internal/cmd"
	"github.com/raphi011/gitstate/internal/log"
)

func testCtx() context.Context {
	return log.WithLogger(context.Background(), log.New(&bytes.Buffer{}, false, false))
}

func newTestEngine() *Engine {
	return NewEngine(cmd.NewRunner())
}

// gitRun runs a git command in dir and fails the test on error.
func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := cmd.OutputContext(context.Background(), dir, "git", args...)
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

// resolveTempDir creates a temp directory and resolves macOS symlinks.
func resolveTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve symlinks for %s: %v", tmpDir, err)
	}
	return resolved
}

// configureTestRepo sets git user config and disables GPG signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
		{"config", "tag.gpgsign", "false"},
	} {
		gitRun(t, repoPath, args...)
	}
}

// setupTestRepo creates a git repo with main branch, initial commit, and git config.
// Returns the resolved repo path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	repoPath := filepath.Join(resolveTempDir(t), "test-repo")

	gitRun(t, "", "init", "-b", "main", repoPath)
	configureTestRepo(t, repoPath)
	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")

	return repoPath
}

// commitFile writes name with content and commits it.
func commitFile(t *testing.T, repoPath, name, content, message string) {
	t.Helper()
	writeFile(t, repoPath, name, content)
	gitRun(t, repoPath, "add", name)
	gitRun(t, repoPath, "commit", "-m", message)
}

func writeFile(t *testing.T, repoPath, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repoPath, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func readFile(t *testing.T, repoPath, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(repoPath, name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// fakeExecutor records invocations and answers them from handler.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	handler func(args []string) (*cmd.Result, error)
}

func (f *fakeExecutor) Exec(_ context.Context, _ string, _ string, args ...string) (*cmd.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()
	if f.handler == nil {
		return &cmd.Result{}, nil
	}
	return f.handler(args)
}

func (f *fakeExecutor) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func reply(stdout, stderr string, exitCode int) func([]string) (*cmd.Result, error) {
	return func([]string) (*cmd.Result, error) {
		return &cmd.Result{Stdout: stdout, Stderr: stderr, ExitCode: exitCode}, nil
	}
}
