package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/git"
)

// completeTags provides tag name completion for the first argument.
func (a *app) completeTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx := cmd.Context()
	if err := a.open(ctx); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tags, err := a.tags.List(ctx, a.repo)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, t := range tags {
		if strings.HasPrefix(t.Name, toComplete) {
			matches = append(matches, t.Name)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeStashes provides stash index completion, described by the
// stash message.
func (a *app) completeStashes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx := cmd.Context()
	if err := a.open(ctx); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	stashes, err := a.stashes.List(ctx, a.repo)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, s := range stashes {
		index := fmt.Sprintf("%d", s.Index)
		if !strings.HasPrefix(index, toComplete) {
			continue
		}
		matches = append(matches, index+"\t"+stashDescription(s))
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

func stashDescription(s git.Stash) string {
	if s.Message != "" {
		return s.Message
	}
	return s.Subject
}
