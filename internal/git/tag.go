package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// tagFields is the for-each-ref format, one unit-separated record per tag.
var tagFields = []string{
	"%(refname:short)",
	"%(objecttype)",
	"%(objectname)",
	"%(*objectname)",
	"%(taggername)",
	"%(taggeremail)",
	"%(creatordate:unix)",
	"%(contents)",
}

var tagFormat = "--format=" + strings.Join(tagFields, "%1f") + "%1e"

// ListTags returns every tag in the repository in git's ref order.
func (e *Engine) ListTags(ctx context.Context, repo string) ([]Tag, error) {
	out, err := e.output(ctx, repo, "for-each-ref", tagFormat, "refs/tags")
	if err != nil {
		return nil, err
	}
	return parseTags(out)
}

// Tag looks up a single tag by name.
func (e *Engine) Tag(ctx context.Context, repo, name string) (*Tag, error) {
	if err := validRefArg("tag name", name); err != nil {
		return nil, err
	}
	out, err := e.output(ctx, repo, "for-each-ref", tagFormat, "refs/tags/"+name)
	if err != nil {
		return nil, err
	}
	tags, err := parseTags(out)
	if err != nil {
		return nil, err
	}
	// refs/tags/v1 also matches refs/tags/v1/rc1
	for i := range tags {
		if tags[i].Name == name {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
}

// CreateTag creates a tag and returns it as git now reports it.
// A non-empty message creates an annotated tag.
func (e *Engine) CreateTag(ctx context.Context, repo string, opts TagOptions) (*Tag, error) {
	if err := validRefArg("tag name", opts.Name); err != nil {
		return nil, err
	}
	target := opts.Target
	if target == "" {
		target = "HEAD"
	}
	if err := validRefArg("tag target", target); err != nil {
		return nil, err
	}

	args := []string{"tag"}
	if opts.Force {
		args = append(args, "-f")
	}
	if opts.Message != "" {
		args = append(args, "-a", "-m", opts.Message)
	}
	args = append(args, opts.Name, target)

	if _, err := e.output(ctx, repo, args...); err != nil {
		return nil, err
	}

	tag, err := e.Tag(ctx, repo, opts.Name)
	if err != nil {
		return nil, &ParseError{Command: "tag", Reason: fmt.Sprintf("created tag %q not listed: %v", opts.Name, err)}
	}
	return tag, nil
}

// DeleteTag removes a tag.
func (e *Engine) DeleteTag(ctx context.Context, repo, name string) error {
	if err := validRefArg("tag name", name); err != nil {
		return err
	}
	_, err := e.output(ctx, repo, "tag", "-d", name)
	return err
}

func parseTags(out string) ([]Tag, error) {
	var tags []Tag
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\r\n")
		if strings.TrimSpace(rec) == "" {
			continue
		}
		tag, err := parseTag(rec)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func parseTag(rec string) (Tag, error) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) != len(tagFields) {
		return Tag{}, &ParseError{
			Command: "for-each-ref",
			Input:   rec,
			Reason:  fmt.Sprintf("expected %d fields, got %d", len(tagFields), len(fields)),
		}
	}

	name, objType, object, peeled := fields[0], fields[1], fields[2], fields[3]
	if name == "" || object == "" {
		return Tag{}, &ParseError{Command: "for-each-ref", Input: rec, Reason: "missing tag name or object id"}
	}

	var created time.Time
	if raw := strings.TrimSpace(fields[6]); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Tag{}, &ParseError{Command: "for-each-ref", Input: rec, Reason: fmt.Sprintf("invalid date %q", raw)}
		}
		created = time.Unix(secs, 0)
	}

	tag := Tag{Name: name, Target: object, CreatedAt: created}
	if objType == "tag" {
		tag.Annotated = true
		tag.Object = object
		if peeled != "" {
			tag.Target = peeled
		}
		tag.Message = strings.TrimRight(fields[7], "\n")
		tag.Tagger = fields[4]
		tag.TaggerEmail = strings.Trim(fields[5], "<>")
	}
	return tag, nil
}
