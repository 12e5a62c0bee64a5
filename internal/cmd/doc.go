// Package cmd runs external commands and captures their output.
//
// [Runner] is the single channel through which gitstate talks to git. It
// separates two outcomes callers must treat differently:
//
//   - the process could not be started at all: a [*LaunchError]
//     (matches [ErrLaunch] via errors.Is)
//   - the process ran: a [*Result] with stdout, stderr and the exit code,
//     even when the exit code is non-zero
//
// Many git commands print diagnostics on stderr while succeeding, so the
// exit code is left for the caller to interpret.
//
// # Usage
//
//	res, err := cmd.NewRunner().Exec(ctx, repo, "git", "tag", "--list")
//	if err != nil {
//	    // git missing or repo directory gone
//	}
//	if res.ExitCode != 0 {
//	    // git reported a failure, see res.Stderr
//	}
//
// [RunContext] and [OutputContext] fold a non-zero exit into an error whose
// message is the command's stderr, for callers that only need pass/fail.
//
// [WithTempFile] scopes a temporary file to one call: it is created right
// before the callback runs and removed on every exit path.
package cmd
