// Package logging configures the process-wide slog logger for credcascade.
//
// Logs are JSON lines. Without a log file they go to stderr; with one they
// go to a size-rotated file (and optionally stderr too). The Viewer reads
// those JSON lines back for `credcascade logs`.
package logging
