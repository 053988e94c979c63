// Package cmd provides the CLI commands for credcascade.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/credcascade/internal/config"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
	"github.com/Aman-CERP/credcascade/internal/logging"
	"github.com/Aman-CERP/credcascade/internal/profiling"
	"github.com/Aman-CERP/credcascade/pkg/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath     string
	debug          bool
	profile        profiling.Options
	profiler       *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command for the credcascade CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "credcascade",
		Short: "Propagate credential registry changes to the search index",
		Long: `credcascade keeps a search index consistent with a credential registry.

Saving or deleting an entity re-indexes it and every related entity that
depends on it. Saving a foundational or redundant credential set updates
only that set.

Examples:
  credcascade init --example-graph
  credcascade save credential_set cs-permit --graph graph.yaml
  credcascade delete credential_set cs-licence-b --graph graph.yaml --dry-run`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("credcascade version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: ./"+config.ProjectFileName+")")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.credcascade/logs/")

	cmd.PersistentFlags().StringVar(&opts.profile.CPUPath, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.HeapPath, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.TracePath, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = opts.start
	cmd.PersistentPostRunE = opts.stop

	cmd.AddCommand(newCascadeCmd(opts, opSave))
	cmd.AddCommand(newCascadeCmd(opts, opDelete))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start enables debug logging and profiling if requested.
func (o *globalOptions) start(_ *cobra.Command, _ []string) error {
	if o.debug {
		cleanup, err := logging.SetupDefault(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		o.loggingCleanup = cleanup
		slog.Debug("debug_logging_enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	if o.profile.Enabled() {
		session, err := profiling.Start(o.profile)
		if err != nil {
			return err
		}
		o.profiler = session
	}
	return nil
}

// stop writes pending profiles and closes the log file.
func (o *globalOptions) stop(_ *cobra.Command, _ []string) error {
	err := o.profiler.Stop()
	o.profiler = nil

	if o.loggingCleanup != nil {
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
	return err
}

// loadConfig loads --config if given, otherwise the configuration for the
// working directory. Without --debug the configured logger is installed.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if !o.debug {
		cleanup, err := logging.SetupDefault(cfg.LogSetup())
		if err != nil {
			return nil, fmt.Errorf("failed to setup logging: %w", err)
		}
		o.loggingCleanup = cleanup
	}
	return cfg, nil
}

// Execute runs the root command and prints errors to stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, cerrors.FormatForCLI(err))
	}
	return err
}
