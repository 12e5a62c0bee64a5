package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repository config file at the repo root.
const LocalConfigFileName = ".gitstate.toml"

// LocalConfig holds per-repo configuration overrides from .gitstate.toml.
// Pointer fields indicate "not set" (inherit from global).
type LocalConfig struct {
	Hooks  HooksConfig `toml:"-"` // merge by name into global
	Cache  LocalCache  `toml:"cache"`
	Merge  LocalMerge  `toml:"merge"`
	Rebase LocalRebase `toml:"rebase"`
}

// LocalCache holds local cache TTL overrides
type LocalCache struct {
	TagTTL   *time.Duration `toml:"tag_ttl"`
	StashTTL *time.Duration `toml:"stash_ttl"`
}

// LocalMerge holds local merge overrides
type LocalMerge struct {
	NoFastForward *bool `toml:"no_ff"`
}

// LocalRebase holds local rebase overrides
type LocalRebase struct {
	Autostash *bool `toml:"autostash"`
}

// rawLocalConfig is used for initial TOML parsing before processing hooks
type rawLocalConfig struct {
	Hooks  map[string]any `toml:"hooks"`
	Cache  LocalCache     `toml:"cache"`
	Merge  LocalMerge     `toml:"merge"`
	Rebase LocalRebase    `toml:"rebase"`
}

// LoadLocal reads a per-repo .gitstate.toml config from the given repo path.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	configFile := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	local := &LocalConfig{
		Hooks:  parseHooksConfig(raw.Hooks),
		Cache:  raw.Cache,
		Merge:  raw.Merge,
		Rebase: raw.Rebase,
	}

	if d := local.Cache.TagTTL; d != nil {
		if err := validatePositive(*d, "cache.tag_ttl"); err != nil {
			return nil, fmt.Errorf("%w in %s", err, configFile)
		}
	}
	if d := local.Cache.StashTTL; d != nil {
		if err := validatePositive(*d, "cache.stash_ttl"); err != nil {
			return nil, fmt.Errorf("%w in %s", err, configFile)
		}
	}
	if err := validateHooks(local.Hooks, configFile); err != nil {
		return nil, err
	}

	return local, nil
}

// defaultLocalConfig is the template for gitstate config init --local
const defaultLocalConfig = `# gitstate local config (per-repo overrides)
# Place this file at the root of the repository.
# Settings here override the global config for this repo only.

# [cache]
# tag_ttl = "10m"   # a repo whose tags rarely change

# [merge]
# no_ff = true

# [rebase]
# autostash = true

# Hooks - add repo-specific hooks or override global hooks
# Set enabled = false to disable a global hook for this repo
#
# [hooks.changelog]
# command = "make changelog TAG={tag}"
# description = "Regenerate changelog"
# on = ["tag-create"]
#
# [hooks.global-hook-name]
# enabled = false  # Disable this global hook for this repo
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
