package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// RenderMarkdown renders md for the terminal, wrapped at width. It returns
// md unchanged when rendering fails.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = DefaultLineWidth
	}
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle(), glamour.WithWordWrap(width)}
	if !HasColorSupport() {
		opts = []glamour.TermRendererOption{
			glamour.WithStandardStyle("notty"),
			glamour.WithColorProfile(termenv.Ascii),
			glamour.WithWordWrap(width),
		}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
