// Package config handles loading and validation of gitstate configuration.
//
// Configuration is read from ~/.config/gitstate/config.toml (or the file
// named by GITSTATE_CONFIG) with environment variable overrides.
//
// # Configuration Sources (highest priority first)
//
//   - GITSTATE_GIT, GITSTATE_TAG_TTL, GITSTATE_STASH_TTL env vars
//   - Per-repo .gitstate.toml at the repository root (see [LoadLocal])
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - git: git binary (default: "git")
//   - cache.tag_ttl / cache.stash_ttl: how long listings are served from
//     cache (default: 120s / 30s, must be positive)
//   - status.watch_interval: refresh interval of "status --watch"
//   - merge.no_ff, rebase.autostash: flag defaults
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections:
//
//	[hooks.notify]
//	command = "notify-send 'tagged {tag}'"
//	description = "Desktop notification"
//	on = ["tag-create"]
//
// Hooks with "on" run automatically after the matching mutation succeeded.
// Hooks without "on" only run via explicit --hook=name flag. A local config
// can disable a global hook with enabled = false.
package config
