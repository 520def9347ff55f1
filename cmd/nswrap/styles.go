// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rtxplore/nswrap/internal/runner"
)

// Palette for dark terminal backgrounds.
const (
	colorTitle     = lipgloss.Color("#7C3AED")
	colorDim       = lipgloss.Color("#6B7280")
	colorWritten   = lipgloss.Color("#10B981")
	colorFailed    = lipgloss.Color("#EF4444")
	colorPending   = lipgloss.Color("#F59E0B")
	colorNamespace = lipgloss.Color("#3B82F6")
	colorDetail    = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle renders policy names in summaries and the root banner.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)

	// SubtitleStyle renders secondary text such as namespaces in parentheses.
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorDim)

	// SuccessStyle renders written files and clean checks.
	SuccessStyle = lipgloss.NewStyle().Foreground(colorWritten)

	// ErrorStyle renders the "Error:" prefix and failed files.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFailed)

	// WarningStyle renders files a check would change.
	WarningStyle = lipgloss.NewStyle().Foreground(colorPending)

	// CmdStyle renders target names and paths.
	CmdStyle = lipgloss.NewStyle().Foreground(colorNamespace)

	// VerboseStyle renders per-file details.
	VerboseStyle = lipgloss.NewStyle().Foreground(colorDetail)

	// VerboseHighlightStyle emphasizes items inside per-file details.
	VerboseHighlightStyle = lipgloss.NewStyle().Foreground(colorNamespace)
)

// outcomeStyle returns the style a file outcome is rendered with.
func outcomeStyle(o runner.Outcome) lipgloss.Style {
	switch o {
	case runner.OutcomeWritten:
		return SuccessStyle
	case runner.OutcomeWouldChange:
		return WarningStyle
	case runner.OutcomeFailed, runner.OutcomeCanceled:
		return ErrorStyle
	default:
		return VerboseStyle
	}
}
