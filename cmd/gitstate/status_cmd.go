package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
	"github.com/raphi011/gitstate/internal/ui/static"
	"github.com/raphi011/gitstate/internal/ui/styles"
)

// statusReport is one snapshot of the repository.
type statusReport struct {
	Repo      string        `json:"repo"`
	Branch    string        `json:"branch"`
	State     git.RepoState `json:"state"`
	Tags      int           `json:"tags"`
	LatestTag *git.Tag      `json:"latest_tag,omitempty"`
	Stashes   []git.Stash   `json:"stashes"`
}

func newStatusCmd(a *app) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show a repository overview",
		Aliases: []string{"st"},
		GroupID: GroupState,
		Long: `Show the current branch, any in-progress merge or rebase with its
conflicts, and the tag and stash counts.

With --watch the overview is refreshed every interval until interrupted.
Tags and stashes come from the listing caches between refreshes; the
merge and rebase state is read from git on every refresh.`,
		Args: cobra.NoArgs,
		Example: `  gitstate status                         # One-shot overview
  gitstate status --watch                 # Refresh every status.watch_interval
  gitstate status --watch --interval 1s   # Refresh every second`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.Status.WatchInterval
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}

			if watch {
				return a.watchStatus(ctx, interval)
			}
			return a.printStatus(ctx)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval for --watch (default status.watch_interval)")

	return cmd
}

// collectStatus gathers a snapshot, querying git concurrently.
func (a *app) collectStatus(ctx context.Context) (*statusReport, error) {
	report := &statusReport{Repo: a.repo}
	var tags []git.Tag

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		branch, err := a.engine.CurrentBranch(gctx, a.repo)
		report.Branch = branch
		return err
	})
	g.Go(func() error {
		state, err := a.merges.State(gctx, a.repo)
		report.State = state
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = a.tags.List(gctx, a.repo)
		return err
	})
	g.Go(func() error {
		stashes, err := a.stashes.List(gctx, a.repo)
		report.Stashes = stashes
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Tags = len(tags)
	for i := range tags {
		if report.LatestTag == nil || tags[i].CreatedAt.After(report.LatestTag.CreatedAt) {
			report.LatestTag = &tags[i]
		}
	}
	if report.Stashes == nil {
		report.Stashes = []git.Stash{}
	}
	return report, nil
}

func (a *app) printStatus(ctx context.Context) error {
	report, err := a.collectStatus(ctx)
	if err != nil {
		return err
	}

	out := output.FromContext(ctx)
	if a.jsonOut {
		return out.JSON(report)
	}
	out.Print(formatStatus(report))
	return nil
}

// watchStatus prints a status report every interval until ctx is done.
// The same services serve every refresh, so listings come from cache
// until their TTL runs out.
func (a *app) watchStatus(ctx context.Context, interval time.Duration) error {
	l := log.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := a.printStatus(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// a transient failure (e.g. index.lock held) should not end the watch
			l.Warnf("%v", err)
		}
		if !a.jsonOut {
			output.FromContext(ctx).Println()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func formatStatus(r *statusReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", styles.Bold.Render("repo:   "), r.Repo)
	fmt.Fprintf(&b, "%s %s\n", styles.Bold.Render("branch: "), r.Branch)
	fmt.Fprintf(&b, "%s %s", styles.Bold.Render("state:  "), static.FormatState(r.State))

	tags := fmt.Sprintf("%d", r.Tags)
	if r.LatestTag != nil {
		tags += styles.MutedStyle.Render(fmt.Sprintf(" (latest %s)", r.LatestTag.Name))
	}
	fmt.Fprintf(&b, "%s %s\n", styles.Bold.Render("tags:   "), tags)
	fmt.Fprintf(&b, "%s %d\n", styles.Bold.Render("stashes:"), len(r.Stashes))

	return b.String()
}
