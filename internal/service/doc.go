// Package service is the layer between the CLI and the git engine.
//
// Tag and stash listings are cached per repository for a short TTL so that
// repeated reads (tables, lookups, watch mode) do not spawn git each time.
// A listing is dropped from the cache only after a mutation of the same
// repository succeeded; a failed mutation leaves it as it was.
//
// Merge and rebase state is never cached. It lives in git's on-disk state
// and can be changed by any other process, so [MergeService.State] always
// asks git.
//
// # Concurrency
//
// All services are safe for concurrent use. The cache mutex is never held
// while git runs. Concurrent misses for the same repository share a single
// git invocation, and a fetch that started before an invalidation never
// writes its (now stale) result back.
package service
