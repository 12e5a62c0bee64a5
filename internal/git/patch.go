package git

import (
	"context"

	"github.com/raphi011/gitstate/internal/cmd"
)

// ApplyPatch applies a unified diff to the work tree. The patch is written
// to a temporary file that exists only for the duration of the call.
func (e *Engine) ApplyPatch(ctx context.Context, repo string, patch []byte, opts ApplyOptions) error {
	if len(patch) == 0 {
		return invalidArg("patch is empty")
	}

	return cmd.WithTempFile("gitstate-*.patch", patch, func(path string) error {
		args := []string{"apply"}
		if opts.Check {
			args = append(args, "--check")
		}
		if opts.ThreeWay {
			args = append(args, "--3way")
		}
		if opts.Index {
			args = append(args, "--index")
		}
		if opts.Reverse {
			args = append(args, "-R")
		}
		args = append(args, path)

		res, err := e.run(ctx, repo, args...)
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return &ApplyError{Op: "apply", Message: res.Combined()}
		}
		return nil
	})
}
