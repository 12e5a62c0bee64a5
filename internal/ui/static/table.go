// Package static provides non-interactive terminal output components.
//
// This package contains components for rendering formatted output
// that does not require user interaction, such as the tag and stash
// tables and the repository state summary.
package static

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/raphi011/gitstate/internal/git"
	"github.com/raphi011/gitstate/internal/ui/styles"
)

// Column headers for the tables rendered by the CLI.
var (
	TagHeaders   = []string{"NAME", "COMMIT", "TYPE", "DATE", "MESSAGE"}
	StashHeaders = []string{"REF", "BRANCH", "MESSAGE", "UNTRACKED", "DATE"}
)

const (
	shortHashLen  = 7
	maxMessageLen = 50
	dateFormat    = "2006-01-02 15:04"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	return t.String() + "\n"
}

// TagTableRow returns the cells of one tag, matching TagHeaders.
func TagTableRow(tag git.Tag) []string {
	kind := "lightweight"
	if tag.Annotated {
		kind = "annotated"
	}
	return []string{
		tag.Name,
		shortHash(tag.Target),
		kind,
		formatDate(tag.CreatedAt),
		summary(tag.Message),
	}
}

// StashTableRow returns the cells of one stash entry, matching StashHeaders.
func StashTableRow(s git.Stash) []string {
	msg := s.Message
	if msg == "" {
		msg = s.Subject
	}
	untracked := ""
	if s.IncludesUntracked {
		untracked = "yes"
	}
	return []string{
		s.Ref,
		s.Branch,
		summary(msg),
		untracked,
		formatDate(s.CreatedAt),
	}
}

// FormatState renders the in-progress operation and its conflicts.
func FormatState(state git.RepoState) string {
	if !state.InProgress() {
		return styles.SuccessStyle.Render("clean") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.WarningStyle.Render(string(state.Operation) + " in progress"))
	b.WriteString("\n")
	if len(state.Conflicts) == 0 {
		b.WriteString("  no conflicts left, continue or abort\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  %d conflicted file(s):\n", len(state.Conflicts))
	for _, path := range state.Conflicts {
		b.WriteString("    " + styles.ErrorStyle.Render(path) + "\n")
	}
	return b.String()
}

func shortHash(h string) string {
	if len(h) > shortHashLen {
		return h[:shortHashLen]
	}
	return h
}

// summary returns the first line of msg, truncated for table cells.
func summary(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	if r := []rune(line); len(r) > maxMessageLen {
		return string(r[:maxMessageLen-3]) + "..."
	}
	return line
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateFormat)
}
