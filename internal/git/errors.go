package git

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/raphi011/gitstate/internal/cmd"
)

var (
	// ErrLaunchFailure matches errors where git could not be started.
	ErrLaunchFailure = cmd.ErrLaunch

	// ErrToolFailure matches *ToolError.
	ErrToolFailure = errors.New("git reported failure")

	// ErrParseFailure matches *ParseError.
	ErrParseFailure = errors.New("unexpected git output")

	// ErrApplyFailure matches *ApplyError.
	ErrApplyFailure = errors.New("changes could not be applied")

	// ErrInvalidArgument is returned before running git for unusable input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned by lookups that found nothing.
	ErrNotFound = errors.New("not found")
)

// ToolError is a git command that ran and exited non-zero.
// Message is git's own diagnostic text.
type ToolError struct {
	Args     []string
	ExitCode int
	Message  string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("git %s failed with exit code %d", subcommand(e.Args), e.ExitCode)
	}
	return fmt.Sprintf("git %s: %s", subcommand(e.Args), e.Message)
}

func (e *ToolError) Is(target error) bool { return target == ErrToolFailure }

// ParseError means git succeeded but printed something we do not understand.
type ParseError struct {
	Command string
	Input   string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse git %s output: %s", e.Command, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParseFailure }

// ApplyError is a stash, patch, merge or rebase step that stopped on
// conflicts or could not be applied. Message is git's output.
type ApplyError struct {
	Op      string
	Message string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("git %s: %s", e.Op, e.Message)
}

func (e *ApplyError) Is(target error) bool { return target == ErrApplyFailure }

func newToolError(args []string, res *cmd.Result) *ToolError {
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	return &ToolError{Args: args, ExitCode: res.ExitCode, Message: msg}
}

// conflictPattern matches git output for steps that stopped half way.
var conflictPattern = regexp.MustCompile(`(?i)conflict|could not apply|needs merge|unmerged|patch failed|does not apply|mark them as resolved|would be overwritten`)

func isConflict(res *cmd.Result) bool {
	return conflictPattern.MatchString(res.Stdout) || conflictPattern.MatchString(res.Stderr)
}

// subcommand returns the git subcommand in args, skipping "-c key=value".
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" || args[i] == "-C" {
			i++
			continue
		}
		if !strings.HasPrefix(args[i], "-") {
			return args[i]
		}
	}
	return strings.Join(args, " ")
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
