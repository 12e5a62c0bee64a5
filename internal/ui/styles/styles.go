// Package styles provides shared lipgloss styles for UI components.
//
// This package centralizes color definitions and styling to ensure
// visual consistency across the static tables and the prompts.
package styles

import "github.com/charmbracelet/lipgloss"

// Primary colors used throughout the UI
var (
	// Success is used for clean state and checkmarks (green)
	Success lipgloss.TerminalColor = lipgloss.Color("82")

	// Warning is used for operations in progress (orange)
	Warning lipgloss.TerminalColor = lipgloss.Color("214")

	// Error is used for conflicts (red)
	Error lipgloss.TerminalColor = lipgloss.Color("196")

	// Muted is used for hashes and dates (gray)
	Muted lipgloss.TerminalColor = lipgloss.Color("240")
)

// Common styles
var (
	// Bold applies bold formatting
	Bold = lipgloss.NewStyle().Bold(true)

	// SuccessStyle applies the success color
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	// WarningStyle applies the warning color with bold
	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// ErrorStyle applies the error color
	ErrorStyle = lipgloss.NewStyle().Foreground(Error)

	// MutedStyle applies the muted color
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
)
