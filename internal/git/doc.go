// Package git is the domain engine: it turns repository intents into git
// command lines, runs them through a [cmd.Executor] and parses the output.
//
// All operations shell out to the git CLI rather than using a Go git
// library, so user configuration (hooks, signing, aliases, credential
// helpers) applies exactly as on the command line. The repository path is
// used as the working directory of the git process, so a path that does not
// exist surfaces as a launch failure.
//
// The engine never caches and never retries; caching lives in the service
// layer.
//
// # Tags
//
//   - [Engine.ListTags], [Engine.Tag]: read tags via for-each-ref
//   - [Engine.CreateTag]: lightweight or annotated, returns the created tag
//   - [Engine.DeleteTag]
//
// # Stashes
//
// Stashes are addressed by position. The index is translated into
// stash@{N} on every call and is only valid until the next stash mutation.
//
//   - [Engine.ListStashes], [Engine.StashDiff]
//   - [Engine.PushStash], [Engine.PopStash], [Engine.ApplyStash], [Engine.DropStash]
//
// # Merge and Rebase
//
//   - [Engine.Merge], [Engine.MergeAbort]
//   - [Engine.Rebase], [Engine.RebaseContinue], [Engine.RebaseAbort]
//   - [Engine.State]: the live in-progress state from the git directory
//
// # Errors
//
// Failures are typed so callers can tell them apart with errors.Is:
//
//   - [ErrLaunchFailure]: git could not be started
//   - [ErrToolFailure] ([*ToolError]): git ran and reported failure
//   - [ErrParseFailure] ([*ParseError]): git output did not have the expected shape
//   - [ErrApplyFailure] ([*ApplyError]): a stash, patch, merge or rebase stopped on conflicts
//
// The error text always carries git's own diagnostic message.
package git
