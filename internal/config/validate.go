package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidTriggers lists the values a hook's "on" may contain.
var ValidTriggers = []string{
	"tag-create", "tag-delete",
	"stash-push", "stash-pop", "stash-apply", "stash-drop",
	"merge", "rebase", "apply",
	"all",
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Git) == "" {
		return fmt.Errorf("git must not be empty")
	}
	if err := validatePositive(c.Cache.TagTTL, "cache.tag_ttl"); err != nil {
		return err
	}
	if err := validatePositive(c.Cache.StashTTL, "cache.stash_ttl"); err != nil {
		return err
	}
	if err := validatePositive(c.Status.WatchInterval, "status.watch_interval"); err != nil {
		return err
	}
	return validateHooks(c.Hooks, "")
}

// validatePositive rejects zero and negative durations.
func validatePositive(d time.Duration, field string) error {
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be positive", field, d)
	}
	return nil
}

// validateHooks checks every enabled hook has a command and known triggers.
func validateHooks(hc HooksConfig, contextInfo string) error {
	suffix := ""
	if contextInfo != "" {
		suffix = " in " + contextInfo
	}
	for name, hook := range hc.Hooks {
		if !hook.IsEnabled() {
			continue
		}
		if strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("hook %q%s has no command", name, suffix)
		}
		for _, on := range hook.On {
			if err := validateEnum(on, fmt.Sprintf("hooks.%s.on value", name), ValidTriggers); err != nil {
				return fmt.Errorf("%w%s", err, suffix)
			}
		}
	}
	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
