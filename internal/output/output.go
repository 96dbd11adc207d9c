// Package output formats the CLI's human-readable messages.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Aman-CERP/wfkit/internal/ui"
)

// Writer writes status lines, key/value listings and code blocks.
type Writer struct {
	out    io.Writer
	styles ui.Styles
}

// New creates a new output Writer. Color is used only on terminals that
// have not set NO_COLOR.
func New(out io.Writer) *Writer {
	noColor := ui.Colorless(out)
	return &Writer{
		out:    out,
		styles: ui.GetStyles(noColor),
	}
}

// Status prints a status message with an icon.
// Write errors are ignored.
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
	w.Status("✅", w.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", w.styles.Warning.Render(msg))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// KeyValues prints one "key  value" line per entry, keys sorted and
// aligned. Non-string values are printed as JSON.
func (w *Writer) KeyValues(values map[string]any) {
	keys := make([]string, 0, len(values))
	width := 0
	for k := range values {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	slices.Sort(keys)

	for _, k := range keys {
		label := w.styles.Label.Render(k) + strings.Repeat(" ", width-len(k))
		_, _ = fmt.Fprintf(w.out, "%s  %s\n", label, FormatValue(values[k]))
	}
}

// FormatValue returns strings unquoted and anything else as JSON.
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
