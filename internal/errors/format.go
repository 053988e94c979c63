package errors

import (
	"fmt"
	"log/slog"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var ce *CascadeError
	if !As(err, &ce) {
		ce = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", err.Error()))
	if ce.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ce.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", ce.Code))

	return sb.String()
}

// LogAttrs returns slog attributes describing err.
// Plain errors produce a single "error" attribute.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	attrs := []slog.Attr{slog.String("error", err.Error())}

	var ce *CascadeError
	if !As(err, &ce) {
		return attrs
	}

	attrs = append(attrs,
		slog.String("error_code", ce.Code),
		slog.String("category", string(ce.Category)),
		slog.Bool("retryable", ce.Retryable))
	for k, v := range ce.Details {
		attrs = append(attrs, slog.String("detail_"+k, v))
	}
	return attrs
}
