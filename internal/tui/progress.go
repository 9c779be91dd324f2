package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

// DefaultLineWidth is used when the terminal width is unknown.
const DefaultLineWidth = 100

// ProgressBar renders a static bubbles progress bar.
type ProgressBar struct {
	bar progress.Model
}

// NewProgressBar creates a bar of the given width. NO_COLOR selects a
// solid gray fill.
func NewProgressBar(width int) *ProgressBar {
	fill := progress.WithScaledGradient("#0087AF", "#00D7FF")
	if !HasColorSupport() {
		fill = progress.WithSolidFill("#808080")
	}
	return &ProgressBar{bar: progress.New(progress.WithWidth(width), fill)}
}

// Render draws the bar at percent, clamped to [0, 1].
func (pb *ProgressBar) Render(percent float64) string {
	return pb.bar.ViewAs(min(max(percent, 0), 1))
}

// FormatEvent renders one progress event as a single line no wider than
// width terminal cells.
func FormatEvent(e domain.ProgressEvent, width int) string {
	line := fmt.Sprintf("[%3d%%] %s %s", e.ProgressPercentage, ProgressStatusIcon(e.Status), e.CurrentTask)
	if e.Details != "" {
		line += ": " + e.Details
	}
	if width <= 0 {
		width = DefaultLineWidth
	}
	return runewidth.Truncate(line, width, "…")
}

// ProgressPrinter is a task observer that prints every event and draws the
// bar after each finished task.
type ProgressPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	width  int
	bar    *ProgressBar
	styles *OutputStyles
}

// NewProgressPrinter creates a printer for a terminal of the given width.
func NewProgressPrinter(w io.Writer, width int) *ProgressPrinter {
	if width <= 0 {
		width = DefaultLineWidth
	}
	CheckNoColor()
	return &ProgressPrinter{
		w:      w,
		width:  width,
		bar:    NewProgressBar(min(width-2, 60)),
		styles: NewOutputStyles(),
	}
}

// Observe has the signature of task.Observer.
func (p *ProgressPrinter) Observe(e domain.ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := FormatEvent(e, p.width)
	if _, err := fmt.Fprintln(p.w, p.style(e.Status).Render(line)); err != nil {
		return err
	}
	if e.Status == constants.ProgressCompleted || e.Status == constants.ProgressFailed {
		if _, err := fmt.Fprintln(p.w, "  "+p.bar.Render(float64(e.ProgressPercentage)/100)); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProgressPrinter) style(status constants.ProgressStatus) lipgloss.Style {
	switch status {
	case constants.ProgressCompleted:
		return p.styles.Success
	case constants.ProgressFailed:
		return p.styles.Error
	case constants.ProgressStarting:
		return p.styles.Info
	default:
		return p.styles.Dim
	}
}
