package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that the git binary can be found.
func CheckGit(binary string) error {
	if binary == "" {
		binary = DefaultBinary
	}
	if _, err := exec.LookPath(binary); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// IsRepo reports whether path is inside a git work tree.
func (e *Engine) IsRepo(ctx context.Context, path string) bool {
	out, err := e.output(ctx, path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RepoRoot returns the top-level directory of the work tree containing path.
func (e *Engine) RepoRoot(ctx context.Context, path string) (string, error) {
	out, err := e.output(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}
