package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Aman-CERP/credcascade/internal/output"
)

// maxLineSize bounds a single log line read by the viewer.
const maxLineSize = 1024 * 1024

// LogEntry is one parsed JSON log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string // original line
	IsValid bool   // whether JSON parsing succeeded
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // minimum level to show
	Pattern *regexp.Regexp // only lines matching this pattern
	NoColor bool
}

// Viewer reads and filters credcascade log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	styles output.Styles
}

// NewViewer creates a viewer printing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out, styles: output.StylesFor(out, !cfg.NoColor)}
}

// Tail returns the matching entries among the last n lines of path.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	// Ring of the last n lines.
	lines := make([]string, 0, n)
	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		if len(lines) == n {
			lines = lines[1:]
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for _, line := range lines {
		if entry := parseLine(line); v.matches(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow sends entries appended to path after the call to entries until ctx
// is done.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for {
			chunk, err := reader.ReadString('\n')
			partial += chunk
			if err != nil {
				break
			}

			line := strings.TrimSuffix(partial, "\n")
			partial = ""
			if line == "" {
				continue
			}
			if entry := parseLine(line); v.matches(entry) {
				select {
				case entries <- entry:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// Print writes entries to the viewer's output, one per line.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// FormatEntry renders an entry as "15:04:05.000 LEVEL msg k=v ...", with
// attributes sorted by key. Unparseable lines are returned unchanged.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var sb strings.Builder
	sb.WriteString(entry.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(v.formatLevel(entry.Level))
	sb.WriteByte(' ')
	sb.WriteString(entry.Msg)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Attrs[k])
	}
	return sb.String()
}

func parseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}
	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	entry.Level, _ = data["level"].(string)
	entry.Msg, _ = data["msg"].(string)

	entry.Attrs = make(map[string]any, len(data))
	for k, val := range data {
		switch k {
		case "time", "level", "msg":
		default:
			entry.Attrs[k] = val
		}
	}
	return entry
}

func (v *Viewer) matches(entry LogEntry) bool {
	if v.config.Level != "" && LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

func (v *Viewer) formatLevel(level string) string {
	label := strings.ToUpper(level)
	if len(label) > 5 {
		label = label[:5]
	}
	label = fmt.Sprintf("%-5s", label)

	if v.config.NoColor {
		return label
	}

	switch strings.ToLower(level) {
	case "debug":
		return v.styles.Dim.Render(label)
	case "info":
		return v.styles.Success.Render(label)
	case "warn", "warning":
		return v.styles.Warning.Render(label)
	case "error":
		return v.styles.Error.Render(label)
	default:
		return label
	}
}
