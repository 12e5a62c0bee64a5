package config

import "maps"

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	// Shallow copy: Git and Status are global-only.
	merged := *global

	// Merge hooks by name: local overrides/adds, enabled=false removes
	merged.Hooks = mergeHooks(global.Hooks, local.Hooks)

	if local.Cache.TagTTL != nil {
		merged.Cache.TagTTL = *local.Cache.TagTTL
	}
	if local.Cache.StashTTL != nil {
		merged.Cache.StashTTL = *local.Cache.StashTTL
	}
	if local.Merge.NoFastForward != nil {
		merged.Merge.NoFastForward = *local.Merge.NoFastForward
	}
	if local.Rebase.Autostash != nil {
		merged.Rebase.Autostash = *local.Rebase.Autostash
	}

	return &merged
}

// mergeHooks merges local hooks into global hooks.
// Local hooks with the same name override global hooks.
// Local hooks with enabled=false remove the global hook.
func mergeHooks(global, local HooksConfig) HooksConfig {
	merged := HooksConfig{
		Hooks: make(map[string]Hook, len(global.Hooks)),
	}

	maps.Copy(merged.Hooks, global.Hooks)

	for name, hook := range local.Hooks {
		if !hook.IsEnabled() {
			delete(merged.Hooks, name)
			continue
		}
		merged.Hooks[name] = hook
	}

	return merged
}
