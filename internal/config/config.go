package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultGit           = "git"
	DefaultTagTTL        = 120 * time.Second
	DefaultStashTTL      = 30 * time.Second
	DefaultWatchInterval = 5 * time.Second
)

// Hook defines a command run after a successful mutation.
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`      // triggers this hook runs on (empty = only via --hook)
	Enabled     *bool    `toml:"enabled"` // nil = enabled; false disables a global hook in a local config
}

// IsEnabled returns true unless the hook was explicitly disabled.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// CacheConfig holds the TTLs of the listing caches.
type CacheConfig struct {
	TagTTL   time.Duration `toml:"tag_ttl"`
	StashTTL time.Duration `toml:"stash_ttl"`
}

// StatusConfig holds settings for "gitstate status".
type StatusConfig struct {
	WatchInterval time.Duration `toml:"watch_interval"`
}

// MergeConfig holds flag defaults for "gitstate merge".
type MergeConfig struct {
	NoFastForward bool `toml:"no_ff"`
}

// RebaseConfig holds flag defaults for "gitstate rebase".
type RebaseConfig struct {
	Autostash bool `toml:"autostash"`
}

// Config holds the gitstate configuration
type Config struct {
	Git    string       `toml:"git"`
	Cache  CacheConfig  `toml:"cache"`
	Status StatusConfig `toml:"status"`
	Merge  MergeConfig  `toml:"merge"`
	Rebase RebaseConfig `toml:"rebase"`
	Hooks  HooksConfig  `toml:"-"` // custom parsing needed
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Git: DefaultGit,
		Cache: CacheConfig{
			TagTTL:   DefaultTagTTL,
			StashTTL: DefaultStashTTL,
		},
		Status: StatusConfig{
			WatchInterval: DefaultWatchInterval,
		},
		Hooks: HooksConfig{Hooks: map[string]Hook{}},
	}
}

type configKey struct{}

// WithConfig returns a new context with cfg stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored in ctx, or nil.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

// Path returns the config file location. GITSTATE_CONFIG overrides the
// default ~/.config/gitstate/config.toml.
func Path() (string, error) {
	if p := os.Getenv("GITSTATE_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gitstate", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before processing hooks
type rawConfig struct {
	Git    string         `toml:"git"`
	Cache  CacheConfig    `toml:"cache"`
	Status StatusConfig   `toml:"status"`
	Merge  MergeConfig    `toml:"merge"`
	Rebase RebaseConfig   `toml:"rebase"`
	Hooks  map[string]any `toml:"hooks"`
}

// Load reads the config file and applies environment overrides.
// Returns Default() (with overrides) if the file doesn't exist.
// Returns an error only if the file exists but is invalid, or an override
// is malformed; Default() is returned alongside the error.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		if err := applyEnvOverrides(&cfg); err != nil {
			return Default(), err
		}
		return cfg, cfg.validate()
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return Default(), err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Default(), err
	}
	if err := cfg.validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := Config{
		Git:    raw.Git,
		Cache:  raw.Cache,
		Status: raw.Status,
		Merge:  raw.Merge,
		Rebase: raw.Rebase,
		Hooks:  parseHooksConfig(raw.Hooks),
	}

	// Use defaults for unset values; explicit zero or negative values are
	// left in place for validate to reject.
	def := Default()
	if cfg.Git == "" {
		cfg.Git = def.Git
	}
	if !md.IsDefined("cache", "tag_ttl") {
		cfg.Cache.TagTTL = def.Cache.TagTTL
	}
	if !md.IsDefined("cache", "stash_ttl") {
		cfg.Cache.StashTTL = def.Cache.StashTTL
	}
	if !md.IsDefined("status", "watch_interval") {
		cfg.Status.WatchInterval = def.Status.WatchInterval
	}

	return cfg, nil
}

// applyEnvOverrides applies GITSTATE_* environment variables.
// Empty variables are ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GITSTATE_GIT"); v != "" {
		cfg.Git = v
	}
	for _, o := range []struct {
		env    string
		target *time.Duration
	}{
		{"GITSTATE_TAG_TTL", &cfg.Cache.TagTTL},
		{"GITSTATE_STASH_TTL", &cfg.Cache.StashTTL},
	} {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", o.env, v, err)
		}
		*o.target = d
	}
	return nil
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		// Hook definitions are tables
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if on, ok := hookMap["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					hook.On = append(hook.On, s)
				}
			}
		}
		if enabled, ok := hookMap["enabled"].(bool); ok {
			hook.Enabled = &enabled
		}
		hc.Hooks[key] = hook
	}

	return hc
}

const defaultConfig = `# gitstate configuration

# git binary, looked up on PATH unless absolute (env: GITSTATE_GIT)
git = "git"

# How long tag and stash listings are served from cache before git is asked
# again. Any mutation through gitstate refreshes them immediately.
[cache]
tag_ttl = "120s"   # env: GITSTATE_TAG_TTL
stash_ttl = "30s"  # env: GITSTATE_STASH_TTL

[status]
watch_interval = "5s"  # refresh interval for "gitstate status --watch"

# Flag defaults
# [merge]
# no_ff = true
#
# [rebase]
# autostash = true

# Hooks - run commands after a successful mutation
# Use --hook=name to run a specific hook, --no-hook to skip all hooks
#
# Hooks with "on" run automatically for matching triggers.
# Hooks without "on" only run when explicitly called with --hook=name.
#
# [hooks.notify]
# command = "notify-send 'tagged {tag} in {repo}'"
# description = "Desktop notification for new tags"
# on = ["tag-create"]
#
# [hooks.push-tag]
# command = "git push origin {tag}"
# description = "Publish tag"
# # no "on" - only runs via --hook=push-tag
#
# Available "on" values: "tag-create", "tag-delete", "stash-push",
# "stash-pop", "stash-apply", "stash-drop", "merge", "rebase", "apply", "all"
#
# Hooks run with the repository root as working directory.
#
# Available placeholders:
#   {repo}     - absolute repository path
#   {folder}   - repository folder name
#   {branch}   - current branch
#   {tag}      - tag name (tag triggers)
#   {stash}    - stash reference, e.g. stash@{0} (stash triggers)
#   {trigger}  - trigger that ran the hook
#   {key}      - custom variable passed via --arg key=value
#   {key:-def} - custom variable with default value if not provided
`

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}

// DefaultConfig returns the default configuration template content.
func DefaultConfig() string {
	return defaultConfig
}
