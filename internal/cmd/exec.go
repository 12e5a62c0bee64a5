package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/gitstate/internal/log"
)

// ErrLaunch is matched by every *LaunchError.
var ErrLaunch = errors.New("process could not be launched")

// Result holds the captured output of a finished process.
// A non-zero ExitCode is not an error by itself.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stderr followed by stdout, trimmed.
func (r *Result) Combined() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stderr) + "\n" + strings.TrimSpace(r.Stdout))
}

// LaunchError reports that the process never started, e.g. a missing binary
// or a working directory that does not exist.
type LaunchError struct {
	Name string
	Args []string
	Dir  string
	Err  error
}

func (e *LaunchError) Error() string {
	if e.Dir != "" {
		return fmt.Sprintf("failed to launch %s in %s: %v", e.Name, e.Dir, e.Err)
	}
	return fmt.Sprintf("failed to launch %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLaunch) true for any LaunchError.
func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// Executor runs an external command in dir and captures its output.
type Executor interface {
	Exec(ctx context.Context, dir, name string, args ...string) (*Result, error)
}

// Runner is the os/exec backed Executor.
type Runner struct{}

// NewRunner returns the default Executor.
func NewRunner() *Runner {
	return &Runner{}
}

// Exec starts name with args in dir and waits for it to exit.
//
// The process is not bound to ctx: cancelling ctx makes Exec return
// ctx.Err() immediately, but the process runs to completion and is reaped in
// the background.
func (Runner) Exec(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := log.FromContext(ctx)
	done := l.Command(dir, name, args...)

	var stdout, stderr strings.Builder
	c := exec.Command(name, args...)
	c.Dir = dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, &LaunchError{Name: name, Args: args, Dir: dir, Err: err}
	}

	waited := make(chan error, 1)
	go func() { waited <- c.Wait() }()

	select {
	case <-ctx.Done():
		done(time.Since(start))
		l.Debug("command abandoned", "cmd", name, "pid", c.Process.Pid, "reason", ctx.Err())
		return nil, ctx.Err()
	case err := <-waited:
		done(time.Since(start))
		res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitCode()
				return res, nil
			}
			return nil, &LaunchError{Name: name, Args: args, Dir: dir, Err: err}
		}
		return res, nil
	}
}

// RunContext executes a command and returns stderr in the error message if it
// exits non-zero.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContext(ctx, dir, name, args...)
	return err
}

// OutputContext executes a command and returns stdout, with stderr in the
// error if it exits non-zero.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	res, err := NewRunner().Exec(ctx, dir, name, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("%s exited with status %d", name, res.ExitCode)
	}
	return []byte(res.Stdout), nil
}

// WithTempFile writes data to a fresh temp file, calls fn with its path and
// removes the file afterwards, whatever fn returns.
func WithTempFile(pattern string, data []byte, fn func(path string) error) error {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return fn(path)
}
