package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/credcascade/configs"
	"github.com/Aman-CERP/credcascade/internal/config"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
	"github.com/Aman-CERP/credcascade/internal/output"
)

// ExampleGraphFileName is the file init writes the example graph to.
const ExampleGraphFileName = "graph.yaml"

func newInitCmd() *cobra.Command {
	var (
		dir          string
		force        bool
		exampleGraph bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project configuration",
		Long: `Write a ` + config.ProjectFileName + ` configuration template.

With --example-graph a small credential registry is written to
` + ExampleGraphFileName + ` as well, ready for 'credcascade save'.

An existing configuration is kept unless --force is given, in which case
it is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, dir, force, exampleGraph)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Project directory")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files (a backup is kept)")
	cmd.Flags().BoolVar(&exampleGraph, "example-graph", false, "Also write an example registry graph")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, exampleGraph bool) error {
	out := output.New(cmd.OutOrStdout())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	configPath := filepath.Join(dir, config.ProjectFileName)
	if err := writeTemplate(out, configPath, configs.ProjectConfigTemplate, force); err != nil {
		return err
	}

	if exampleGraph {
		graphPath := filepath.Join(dir, ExampleGraphFileName)
		if err := writeTemplate(out, graphPath, configs.ExampleGraph, force); err != nil {
			return err
		}
		out.Newline()
		out.Status("", fmt.Sprintf("Try: credcascade save credential_set cs-permit --graph %s --dry-run", graphPath))
	}

	return nil
}

// writeTemplate writes content to path, backing up an existing file when
// force is set.
func writeTemplate(out *output.Writer, path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return cerrors.ConfigError(fmt.Sprintf("%s already exists", path), nil).
				WithSuggestion("use --force to overwrite it")
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return err
		}
		out.Statusf("", "Backed up %s to %s", filepath.Base(path), filepath.Base(backup))
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	out.Successf("Created %s", path)
	return nil
}
