package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/credcascade/internal/output"
	"github.com/Aman-CERP/credcascade/internal/store"
)

func newStatusCmd(global *globalOptions) *cobra.Command {
	var listIDs bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the index backend and document count",
		Long: `Display information about the index the cascade writes to:
  - Backend and data directory
  - Number of indexed documents
  - Document IDs (with --ids)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, global, listIDs)
		},
	}

	cmd.Flags().BoolVar(&listIDs, "ids", false, "List every indexed document ID")

	return cmd
}

func runStatus(cmd *cobra.Command, global *globalOptions, listIDs bool) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())

	if store.Backend(cfg.Index.Backend) == store.BackendMemory {
		out.KeyValue("backend", cfg.Index.Backend)
		out.Warning("the memory backend keeps no index between runs")
		return nil
	}

	basePath := store.IndexBasePath(cfg.Index.DataDir)
	backend := store.DetectBackend(basePath)
	if backend == "" {
		out.Warningf("no index found in %s", cfg.Index.DataDir)
		out.Status("", "Run 'credcascade save <kind> <id> --graph <file>' to create one")
		return nil
	}

	idx, err := store.NewIndexWithBackend(basePath, string(backend))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer func() { _ = idx.Close() }()

	out.KeyValue("backend", backend)
	out.KeyValue("data dir", cfg.Index.DataDir)
	out.KeyValue("documents", idx.Stats().DocumentCount)
	if string(backend) != cfg.Index.Backend {
		out.Warningf("configured backend is %s but the index on disk is %s", cfg.Index.Backend, backend)
	}

	if listIDs {
		ids, err := idx.AllIDs()
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		out.Newline()
		for n, id := range ids {
			out.Step(n+1, id)
		}
	}

	return nil
}
