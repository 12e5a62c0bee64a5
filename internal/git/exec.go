package git

import (
	"context"
	"strings"

	"github.com/raphi011/gitstate/internal/cmd"
)

// DefaultBinary is the git executable looked up in PATH.
const DefaultBinary = "git"

// Engine translates repository intents into git invocations and parses the
// results. It holds no state besides its executor and never caches.
type Engine struct {
	runner cmd.Executor
	binary string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBinary sets the git executable. Empty keeps the default.
func WithBinary(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.binary = path
		}
	}
}

// NewEngine creates an Engine running git through runner.
func NewEngine(runner cmd.Executor, opts ...EngineOption) *Engine {
	e := &Engine{runner: runner, binary: DefaultBinary}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run executes git with repo as the working directory.
func (e *Engine) run(ctx context.Context, repo string, args ...string) (*cmd.Result, error) {
	return e.runner.Exec(ctx, repo, e.binary, args...)
}

// output runs git and returns stdout, turning a non-zero exit into a *ToolError.
func (e *Engine) output(ctx context.Context, repo string, args ...string) (string, error) {
	res, err := e.run(ctx, repo, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", newToolError(args, res)
	}
	return res.Stdout, nil
}

// integrate runs a step that can stop on conflicts (merge, rebase, stash
// apply). Conflicts become *ApplyError, other failures *ToolError.
func (e *Engine) integrate(ctx context.Context, repo, op string, args ...string) error {
	res, err := e.run(ctx, repo, args...)
	if err != nil {
		return err
	}
	if res.ExitCode == 0 {
		return nil
	}
	if isConflict(res) {
		return &ApplyError{Op: op, Message: res.Combined()}
	}
	return newToolError(args, res)
}

// CurrentBranch returns the checked out branch, or "(detached)".
func (e *Engine) CurrentBranch(ctx context.Context, repo string) (string, error) {
	out, err := e.output(ctx, repo, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "(detached)", nil
	}
	return branch, nil
}

// lines splits output into non-empty trimmed lines.
func lines(out string) []string {
	var result []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}

// validRefArg rejects names git would parse as an option.
func validRefArg(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidArg("%s is required", kind)
	}
	if strings.HasPrefix(name, "-") {
		return invalidArg("%s %q must not start with '-'", kind, name)
	}
	return nil
}
