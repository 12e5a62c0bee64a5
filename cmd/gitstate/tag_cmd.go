package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/hooks"
	"github.com/raphi011/gitstate/internal/log"
	"github.com/raphi011/gitstate/internal/output"
	"github.com/raphi011/gitstate/internal/ui/static"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tag",
		Short:   "List, inspect, create and delete tags",
		GroupID: GroupState,
		Long: `List, inspect, create and delete tags.

The tag listing is cached per repository (cache.tag_ttl, default 2m).
Creating or deleting a tag through gitstate invalidates the cache.`,
		Example: `  gitstate tag list               # List all tags
  gitstate tag list --filter v12  # Fuzzy-filter tag names
  gitstate tag show v1.2.0        # Show one tag
  gitstate tag create v1.3.0 -m "Release 1.3.0"
  gitstate tag delete v1.3.0`,
	}

	cmd.AddCommand(newTagListCmd(a))
	cmd.AddCommand(newTagShowCmd(a))
	cmd.AddCommand(newTagCreateCmd(a))
	cmd.AddCommand(newTagDeleteCmd(a))

	return cmd
}

func newTagListCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List tags",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			tags, err := a.tags.List(ctx, a.repo)
			if err != nil {
				return err
			}
			if filter != "" {
				tags = filterTags(tags, filter)
			}

			if a.jsonOut {
				if tags == nil {
					tags = []git.Tag{}
				}
				return out.JSON(tags)
			}
			if len(tags) == 0 {
				log.FromContext(ctx).Println("No tags found")
				return nil
			}

			rows := make([][]string, 0, len(tags))
			for _, t := range tags {
				rows = append(rows, static.TagTableRow(t))
			}
			out.Print(static.RenderTable(static.TagHeaders, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy-match tag names")

	return cmd
}

// tagSource adapts a tag slice for fuzzy matching on names.
type tagSource []git.Tag

func (s tagSource) String(i int) string { return s[i].Name }
func (s tagSource) Len() int            { return len(s) }

// filterTags returns the tags whose name fuzzy-matches pattern, best match first.
func filterTags(tags []git.Tag, pattern string) []git.Tag {
	matches := fuzzy.FindFrom(pattern, tagSource(tags))
	filtered := make([]git.Tag, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, tags[m.Index])
	}
	return filtered
}

func newTagShowCmd(a *app) *cobra.Command {
	var copyTarget bool

	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Show a tag",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeTags,
		Example: `  gitstate tag show v1.2.0         # Show tag details
  gitstate tag show v1.2.0 --copy  # Also copy the commit hash to the clipboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			tag, err := a.tags.Get(ctx, a.repo, args[0])
			if err != nil {
				return err
			}

			if copyTarget {
				if err := clipboard.WriteAll(tag.Target); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				log.FromContext(ctx).Printf("Copied %s to clipboard\n", tag.Target)
			}

			if a.jsonOut {
				return out.JSON(tag)
			}
			out.Print(formatTag(tag))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyTarget, "copy", "c", false, "Copy the tagged commit hash to the clipboard")

	return cmd
}

// formatTag renders a tag as aligned key/value lines.
func formatTag(tag *git.Tag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tag:     %s\n", tag.Name)
	fmt.Fprintf(&b, "commit:  %s\n", tag.Target)
	if !tag.Annotated {
		b.WriteString("type:    lightweight\n")
		return b.String()
	}
	b.WriteString("type:    annotated\n")
	if tag.Tagger != "" {
		fmt.Fprintf(&b, "tagger:  %s <%s>\n", tag.Tagger, tag.TaggerEmail)
	}
	if !tag.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "date:    %s\n", tag.CreatedAt.Local().Format("2006-01-02 15:04:05 -0700"))
	}
	if msg := strings.TrimSpace(tag.Message); msg != "" {
		b.WriteString("\n")
		for line := range strings.SplitSeq(msg, "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}

func newTagCreateCmd(a *app) *cobra.Command {
	var (
		opts git.TagOptions
		hf   hookFlags
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Long: `Create a tag at HEAD or --target.

With -m the tag is annotated, otherwise lightweight. Hooks with
on = ["tag-create"] run after the tag was created.`,
		Args: cobra.ExactArgs(1),
		Example: `  gitstate tag create v1.3.0                 # Lightweight tag at HEAD
  gitstate tag create v1.3.0 -m "Release"    # Annotated tag
  gitstate tag create v1.3.0 --target main   # Tag another revision
  gitstate tag create v1.3.0 -f              # Move an existing tag`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			opts.Name = args[0]

			pending, err := a.selectHooks(&hf, hooks.TriggerTagCreate, a.stdin)
			if err != nil {
				return err
			}

			tag, err := a.tags.Create(ctx, a.repo, opts)
			if err != nil {
				return err
			}

			if a.jsonOut {
				if err := out.JSON(tag); err != nil {
					return err
				}
			} else {
				out.Printf("Created tag %s at %s\n", tag.Name, shortHash(tag.Target))
			}

			pending.run(ctx, a, hooks.TriggerTagCreate, func(h *hooks.Context) { h.Tag = tag.Name })
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Annotation message (creates an annotated tag)")
	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "Revision to tag (default HEAD)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Replace an existing tag")
	a.addHookFlags(cmd, &hf)

	return cmd
}

func newTagDeleteCmd(a *app) *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:               "delete <name>",
		Short:             "Delete a tag",
		Aliases:           []string{"rm"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeTags,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			pending, err := a.selectHooks(&hf, hooks.TriggerTagDelete, a.stdin)
			if err != nil {
				return err
			}

			if err := a.tags.Delete(ctx, a.repo, name); err != nil {
				return err
			}
			output.FromContext(ctx).Printf("Deleted tag %s\n", name)

			pending.run(ctx, a, hooks.TriggerTagDelete, func(h *hooks.Context) { h.Tag = name })
			return nil
		},
	}

	a.addHookFlags(cmd, &hf)

	return cmd
}

func shortHash(h string) string {
	return h[:min(7, len(h))]
}
