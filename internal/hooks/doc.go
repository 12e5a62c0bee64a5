// Package hooks runs user-defined shell commands after a successful mutation.
//
// Hooks are defined in config and run after gitstate mutations such as
// creating a tag, popping a stash or finishing a merge. They enable workflow
// automation such as pushing tags, regenerating changelogs or notifications.
// A hook never runs after a failed mutation.
//
// # Hook Selection
//
//   - Automatic: Hooks with "on" config matching the trigger run automatically
//   - Manual: Use --hook=name to run a specific hook, --no-hook to skip all
//
// Example config:
//
//	[hooks.push-tag]
//	command = "git push origin {tag}"
//	on = ["tag-create"]
//
// # Placeholder Substitution
//
//   - {repo}: Absolute repository path
//   - {folder}: Repository folder name
//   - {branch}: Current branch
//   - {tag}: Tag name (tag triggers)
//   - {stash}: Stash reference such as stash@{0} (stash triggers)
//   - {trigger}: Trigger name (tag-create, stash-pop, merge, ...)
//
// Custom variables via --arg key=value:
//
//   - {key}: Value from --arg key=value
//   - {key:-default}: Value with fallback if not provided
//
// Use --arg key=- to read stdin content into a variable.
//
// Hooks run with the repository root as working directory. Failures are
// reported as warnings ([RunAllNonFatal]) because the mutation itself
// already succeeded.
package hooks
