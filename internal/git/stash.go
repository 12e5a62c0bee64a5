package git

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const stashFormat = "--format=%gd%x1f%H%x1f%P%x1f%ct%x1f%gs%x1e"

var (
	stashRefPattern     = regexp.MustCompile(`^stash@\{(\d+)\}$`)
	stashSubjectPattern = regexp.MustCompile(`^(WIP on|On) (.+?): (.*)$`)
)

// ListStashes returns the stash stack as git orders it, newest first.
func (e *Engine) ListStashes(ctx context.Context, repo string) ([]Stash, error) {
	out, err := e.output(ctx, repo, "stash", "list", stashFormat)
	if err != nil {
		return nil, err
	}
	return parseStashes(out)
}

// PushStash stashes local changes. It returns nil without error when there
// was nothing to stash.
func (e *Engine) PushStash(ctx context.Context, repo string, opts StashOptions) (*Stash, error) {
	args := []string{"stash", "push"}
	if opts.IncludeUntracked {
		args = append(args, "--include-untracked")
	}
	if opts.KeepIndex {
		args = append(args, "--keep-index")
	}
	if opts.Message != "" {
		args = append(args, "-m", opts.Message)
	}

	res, err := e.run(ctx, repo, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, newToolError(args, res)
	}
	if strings.Contains(res.Combined(), "No local changes to save") {
		return nil, nil
	}

	stashes, err := e.ListStashes(ctx, repo)
	if err != nil {
		return nil, err
	}
	for i := range stashes {
		if stashes[i].Index == 0 {
			return &stashes[i], nil
		}
	}
	return nil, &ParseError{Command: "stash push", Reason: "stash succeeded but stash@{0} is not listed"}
}

// PopStash applies the stash at index and removes it when it applied cleanly.
func (e *Engine) PopStash(ctx context.Context, repo string, index int) error {
	if err := validIndex(index); err != nil {
		return err
	}
	return e.integrate(ctx, repo, "stash pop", "stash", "pop", StashRef(index))
}

// ApplyStash applies the stash at index and keeps it on the stack.
func (e *Engine) ApplyStash(ctx context.Context, repo string, index int) error {
	if err := validIndex(index); err != nil {
		return err
	}
	return e.integrate(ctx, repo, "stash apply", "stash", "apply", StashRef(index))
}

// DropStash removes the stash at index.
func (e *Engine) DropStash(ctx context.Context, repo string, index int) error {
	if err := validIndex(index); err != nil {
		return err
	}
	_, err := e.output(ctx, repo, "stash", "drop", StashRef(index))
	return err
}

// StashDiff returns the patch recorded by the stash at index, including
// untracked files stashed with -u.
func (e *Engine) StashDiff(ctx context.Context, repo string, index int) (string, error) {
	if err := validIndex(index); err != nil {
		return "", err
	}
	return e.output(ctx, repo, "stash", "show", "-p", "--include-untracked", StashRef(index))
}

func validIndex(index int) error {
	if index < 0 {
		return invalidArg("stash index %d is negative", index)
	}
	return nil
}

func parseStashes(out string) ([]Stash, error) {
	var stashes []Stash
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\r\n")
		if strings.TrimSpace(rec) == "" {
			continue
		}
		s, err := parseStash(rec)
		if err != nil {
			return nil, err
		}
		stashes = append(stashes, s)
	}
	return stashes, nil
}

func parseStash(rec string) (Stash, error) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) != 5 {
		return Stash{}, &ParseError{Command: "stash list", Input: rec, Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields))}
	}

	m := stashRefPattern.FindStringSubmatch(fields[0])
	if m == nil {
		return Stash{}, &ParseError{Command: "stash list", Input: rec, Reason: fmt.Sprintf("unexpected selector %q", fields[0])}
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return Stash{}, &ParseError{Command: "stash list", Input: rec, Reason: err.Error()}
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
	if err != nil {
		return Stash{}, &ParseError{Command: "stash list", Input: rec, Reason: fmt.Sprintf("invalid date %q", fields[3])}
	}

	s := Stash{
		Index:     index,
		Ref:       fields[0],
		Commit:    fields[1],
		Subject:   strings.TrimRight(fields[4], "\n"),
		CreatedAt: time.Unix(secs, 0),
		// stash commits carry a third parent holding untracked files
		IncludesUntracked: len(strings.Fields(fields[2])) == 3,
	}

	if sm := stashSubjectPattern.FindStringSubmatch(s.Subject); sm != nil {
		s.Branch = sm[2]
		if sm[1] == "On" {
			s.Message = sm[3]
		}
	} else {
		s.Message = s.Subject
	}
	return s, nil
}
