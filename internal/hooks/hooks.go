package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/gitstate/internal/config"
	"github.com/raphi011/gitstate/internal/log"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Trigger identifies the mutation that ran the hook
type Trigger string

const (
	TriggerTagCreate  Trigger = "tag-create"
	TriggerTagDelete  Trigger = "tag-delete"
	TriggerStashPush  Trigger = "stash-push"
	TriggerStashPop   Trigger = "stash-pop"
	TriggerStashApply Trigger = "stash-apply"
	TriggerStashDrop  Trigger = "stash-drop"
	TriggerMerge      Trigger = "merge"
	TriggerRebase     Trigger = "rebase"
	TriggerApply      Trigger = "apply"
)

// Context holds the values for placeholder substitution
type Context struct {
	Repo    string            // absolute repository path, also the working directory
	Folder  string            // repository folder name
	Branch  string            // current branch
	Tag     string            // tag name for tag triggers
	Stash   string            // stash reference for stash triggers
	Trigger Trigger           // mutation that triggered the hook
	Env     map[string]string // custom variables from --arg key=value flags
	DryRun  bool              // if true, print command instead of executing
}

// HookMatch represents a hook that matched the current trigger
type HookMatch struct {
	Hook *config.Hook
	Name string
}

// SelectHooks determines which hooks to run based on config and CLI flags.
// If hookName is specified, only that hook runs. Otherwise, all hooks with
// matching "on" conditions run, sorted by name.
// Returns nil slice if no hooks should run, error if specified hook doesn't exist.
func SelectHooks(cfg config.HooksConfig, hookName string, noHook bool, trigger Trigger) ([]HookMatch, error) {
	if noHook {
		return nil, nil
	}

	// Explicit hook ignores the "on" condition
	if hookName != "" {
		hook, exists := cfg.Hooks[hookName]
		if !exists {
			return nil, fmt.Errorf("unknown hook %q", hookName)
		}
		return []HookMatch{{Hook: &hook, Name: hookName}}, nil
	}

	return findMatchingHooks(cfg, trigger), nil
}

// findMatchingHooks returns all hooks that have trigger in their "on" list.
// Hooks without "on" are skipped (they only run via explicit --hook=name).
func findMatchingHooks(cfg config.HooksConfig, trigger Trigger) []HookMatch {
	var matches []HookMatch

	for name, hook := range cfg.Hooks {
		if hook.IsEnabled() && hookMatchesTrigger(hook, trigger) {
			hookCopy := hook
			matches = append(matches, HookMatch{Hook: &hookCopy, Name: name})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

// hookMatchesTrigger returns true if trigger is in the hook's "on" list.
// Special value "all" matches every trigger.
func hookMatchesTrigger(hook config.Hook, trigger Trigger) bool {
	for _, on := range hook.On {
		if on == "all" || on == string(trigger) {
			return true
		}
	}
	return false
}

// RunAll runs all matched hooks in order and returns on the first error.
// Hook output is written to out.
func RunAll(ctx context.Context, matches []HookMatch, hctx Context, out io.Writer) error {
	for _, match := range matches {
		if err := runHook(ctx, match.Name, match.Hook, hctx, out); err != nil {
			return fmt.Errorf("hook %q failed: %w", match.Name, err)
		}
	}
	return nil
}

// RunAllNonFatal runs all matched hooks, logging failures as warnings.
// The mutation that triggered them already succeeded, so a failing hook
// does not fail the command.
func RunAllNonFatal(ctx context.Context, matches []HookMatch, hctx Context, out io.Writer) {
	l := log.FromContext(ctx)
	for _, match := range matches {
		if err := runHook(ctx, match.Name, match.Hook, hctx, out); err != nil {
			l.Warnf("hook %q failed: %v", match.Name, err)
		}
	}
}

// runHook executes a single hook with variable substitution.
func runHook(ctx context.Context, name string, hook *config.Hook, hctx Context, out io.Writer) error {
	l := log.FromContext(ctx)
	command := SubstitutePlaceholders(hook.Command, hctx)

	if hctx.DryRun {
		fmt.Fprintf(out, "[dry-run] %s: %s\n", name, command)
		return nil
	}

	l.Printf("Running hook '%s'...\n", name)
	l.Debug("hook", "name", name, "trigger", hctx.Trigger, "command", command)

	shellCmd := exec.CommandContext(ctx, "sh", "-c", command)
	shellCmd.Dir = hctx.Repo
	shellCmd.Stdout = out
	shellCmd.Stderr = l.Writer()

	if err := shellCmd.Run(); err != nil {
		return err
	}

	if hook.Description != "" {
		l.Printf("  ✓ %s\n", hook.Description)
	}
	return nil
}

// ParseEnv parses a slice of "key=value" strings into a map.
// Returns an error if any entry doesn't contain "=".
func ParseEnv(envSlice []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, e := range envSlice {
		key, value, err := splitEnv(e)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, nil
}

func splitEnv(e string) (string, string, error) {
	key, value, ok := strings.Cut(e, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid env format %q: expected KEY=VALUE", e)
	}
	if key == "" {
		return "", "", fmt.Errorf("invalid env format %q: key cannot be empty", e)
	}
	return key, value, nil
}

// readStdinIfPiped reads all content from stdin if it's piped (not a TTY).
// Returns empty string and nil if stdin is a TTY (interactive).
func readStdinIfPiped(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// ParseEnvWithStdin is ParseEnv, except that every key whose value is "-"
// receives the content of stdin. Returns an error if stdin is requested but
// not piped or empty.
func ParseEnvWithStdin(envSlice []string, stdin io.Reader) (map[string]string, error) {
	result := make(map[string]string)
	var stdinKeys []string

	for _, e := range envSlice {
		key, value, err := splitEnv(e)
		if err != nil {
			return nil, err
		}
		if value == "-" {
			stdinKeys = append(stdinKeys, key)
		} else {
			result[key] = value
		}
	}

	// Read stdin once for all keys
	if len(stdinKeys) > 0 {
		content, err := readStdinIfPiped(stdin)
		if err != nil {
			return nil, err
		}
		if content == "" {
			return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
		}
		for _, key := range stdinKeys {
			result[key] = content
		}
	}

	return result, nil
}

// placeholderRegex matches {key}, {key:raw}, or {key:-default}.
var placeholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
// Values are properly escaped to prevent command injection. Substitution is a
// single pass, so values containing braces are never expanded again.
//
// Static placeholders: {repo}, {folder}, {branch}, {tag}, {stash}, {trigger}
// Env placeholders (from Context.Env):
//   - {key}          - shell-quoted value
//   - {key:raw}      - unquoted value (for embedding in existing quotes)
//   - {key:-default} - shell-quoted value with default if key missing
func SubstitutePlaceholders(command string, hctx Context) string {
	static := map[string]string{
		"repo":    hctx.Repo,
		"folder":  hctx.Folder,
		"branch":  hctx.Branch,
		"tag":     hctx.Tag,
		"stash":   hctx.Stash,
		"trigger": string(hctx.Trigger),
	}

	return placeholderRegex.ReplaceAllStringFunc(command, func(match string) string {
		submatch := placeholderRegex.FindStringSubmatch(match)
		if submatch == nil {
			return match
		}
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		defaultVal := submatch[3]

		val, ok := static[key]
		if !ok {
			val, ok = hctx.Env[key]
		}
		if !ok {
			val = defaultVal
		}
		if isRaw {
			return val
		}
		return shellQuote(val)
	})
}
