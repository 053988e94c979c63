package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/credcascade/internal/logging"
	"github.com/Aman-CERP/credcascade/internal/output"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View credcascade debug logs",
		Long: `View and tail the log written by commands run with --debug.

Examples:
  credcascade logs                      # Show last 50 lines
  credcascade logs -n 100               # Show last 100 lines
  credcascade logs -f                   # Follow logs in real-time
  credcascade logs --level error        # Show only error logs
  credcascade logs --filter cascade_    # Filter by pattern`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Filter by log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(ctx context.Context, cmd *cobra.Command, opts logsOptions) error {
	if opts.level != "" && !logging.ValidLevel(opts.level) {
		return fmt.Errorf("invalid level %q (valid: debug, info, warn, error)", opts.level)
	}

	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !output.New(out).UseColor(),
	}, out)

	fmt.Fprintf(cmd.ErrOrStderr(), "Log file: %s\n", path)

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch := make(chan logging.LogEntry)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, ch)
		close(ch)
	}()

	for entry := range ch {
		viewer.Print([]logging.LogEntry{entry})
	}
	return <-errCh
}
