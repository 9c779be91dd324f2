// Package tui renders forge's terminal output: styled messages, task tables,
// the live progress line, and markdown summaries.
//
// Colors use lipgloss.AdaptiveColor for light and dark terminals. Call
// CheckNoColor before rendering to honor NO_COLOR and TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/forge/internal/constants"
)

//nolint:gochecknoglobals // styling API
var (
	// ColorPrimary marks active work.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess marks completed work.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning marks skipped or degraded work.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError marks failures.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies faint formatting.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds the styles of message output.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Header  lipgloss.Style
}

// NewOutputStyles creates the message styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
	}
}

// CheckNoColor switches lipgloss to plain ASCII when colors are unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport is false when NO_COLOR is set (to any value) or TERM=dumb.
func HasColorSupport() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// TaskStatusIcon returns the symbol shown next to a task.
func TaskStatusIcon(status constants.TaskStatus) string {
	switch status {
	case constants.TaskStatusPending:
		return "○"
	case constants.TaskStatusInProgress:
		return "●"
	case constants.TaskStatusCompleted:
		return "✓"
	case constants.TaskStatusFailed:
		return "✗"
	case constants.TaskStatusBlocked:
		return "◌"
	default:
		return "?"
	}
}

// TaskStatusColor returns the color of a task status.
func TaskStatusColor(status constants.TaskStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.TaskStatusInProgress:
		return ColorPrimary
	case constants.TaskStatusCompleted:
		return ColorSuccess
	case constants.TaskStatusFailed:
		return ColorError
	case constants.TaskStatusBlocked:
		return ColorWarning
	default:
		return ColorMuted
	}
}

// ProgressStatusIcon returns the symbol of a progress event.
func ProgressStatusIcon(status constants.ProgressStatus) string {
	switch status {
	case constants.ProgressStarting:
		return "▸"
	case constants.ProgressExecuting, constants.ProgressGenerating:
		return "⟳"
	case constants.ProgressCompleted:
		return "✓"
	case constants.ProgressFailed:
		return "✗"
	default:
		return "·"
	}
}

// OverallStatusColor returns the color of an aggregate progress status.
func OverallStatusColor(status constants.OverallStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.OverallCompleted:
		return ColorSuccess
	case constants.OverallHasIssues:
		return ColorError
	case constants.OverallInProgress:
		return ColorPrimary
	default:
		return ColorMuted
	}
}

// RenderTaskStatus renders "icon status" in the status color.
func RenderTaskStatus(status constants.TaskStatus) string {
	return lipgloss.NewStyle().Foreground(TaskStatusColor(status)).Render(TaskStatusIcon(status) + " " + status.String())
}
