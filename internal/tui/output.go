package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output writes command results in the selected format.
type Output interface {
	Success(msg string)
	Error(err error)
	Warning(msg string)
	Info(msg string)
	Table(headers []string, rows [][]string)
	JSON(v any) error
}

// NewOutput returns JSON output for "json" and styled text otherwise.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTextOutput(w)
}

// ValidateFormat rejects anything but text and json.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", forgeerrors.ErrInvalidOutputFormat, format)
	}
}

// TextOutput writes styled text.
type TextOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTextOutput creates a TextOutput, honoring NO_COLOR.
func NewTextOutput(w io.Writer) *TextOutput {
	CheckNoColor()
	return &TextOutput{w: w, styles: NewOutputStyles()}
}

// Success implements Output.
func (o *TextOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints the user-facing message of err and, when one exists, a hint.
func (o *TextOutput) Error(err error) {
	msg, action := forgeerrors.Actionable(err)
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+msg))
	if detail := err.Error(); detail != msg {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  "+detail))
	}
	if action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+action))
	}
}

// Warning implements Output.
func (o *TextOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info implements Output.
func (o *TextOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// Table prints aligned columns. Widths are measured in terminal cells.
func (o *TextOutput) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = o.styles.Header.Render(runewidth.FillRight(h, widths[i]))
	}
	_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

// JSON implements Output.
func (o *TextOutput) JSON(v any) error {
	return encodeIndented(o.w, v)
}

// JSONOutput writes one JSON document per call.
type JSONOutput struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONOutput creates a JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w, encoder: json.NewEncoder(w)}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Details string `json:"details,omitempty"`
}

// Success implements Output.
func (o *JSONOutput) Success(msg string) { o.message("success", msg) }

// Warning implements Output.
func (o *JSONOutput) Warning(msg string) { o.message("warning", msg) }

// Info implements Output.
func (o *JSONOutput) Info(msg string) { o.message("info", msg) }

// Error implements Output.
func (o *JSONOutput) Error(err error) {
	msg, action := forgeerrors.Actionable(err)
	m := jsonMessage{Type: "error", Message: msg, Action: action}
	if detail := err.Error(); detail != msg {
		m.Details = detail
	}
	_ = o.encoder.Encode(m) //nolint:errchkjson // Output has no error return
}

// Table prints the rows as an array of objects keyed by header.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			} else {
				obj[h] = ""
			}
		}
		out = append(out, obj)
	}
	_ = o.encoder.Encode(out) //nolint:errchkjson // Output has no error return
}

// JSON implements Output.
func (o *JSONOutput) JSON(v any) error {
	return encodeIndented(o.w, v)
}

func (o *JSONOutput) message(kind, msg string) {
	_ = o.encoder.Encode(jsonMessage{Type: kind, Message: msg}) //nolint:errchkjson // Output has no error return
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
