// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   Styles
}

// New creates a new output Writer. Color is used only when out is a
// terminal and NO_COLOR is unset.
func New(out io.Writer) *Writer {
	useColor := IsTTY(out) && os.Getenv("NO_COLOR") == ""
	return &Writer{
		out:      out,
		useColor: useColor,
		styles:   StylesFor(out, useColor),
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// UseColor reports whether the writer emits ANSI colors.
func (w *Writer) UseColor() bool {
	return w.useColor
}

// SetColor forces color on or off.
func (w *Writer) SetColor(enabled bool) {
	w.useColor = enabled
	w.styles = StylesFor(w.out, enabled)
}

func (w *Writer) paint(style lipgloss.Style, s string) string {
	if !w.useColor {
		return s
	}
	return style.Render(s)
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.paint(w.styles.Success, "✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.paint(w.styles.Warning, "!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.paint(w.styles.Error, "✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Step prints one numbered line of a trace, e.g. "  1. write topic:t1".
func (w *Writer) Step(n int, msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.paint(w.styles.Dim, fmt.Sprintf("%3d.", n)), msg)
}

// KeyValue prints an aligned "key: value" line.
func (w *Writer) KeyValue(key string, value any) {
	_, _ = fmt.Fprintf(w.out, "  %-16s %v\n", key+":", value)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
