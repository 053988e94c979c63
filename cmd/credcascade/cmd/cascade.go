package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/credcascade/internal/cascade"
	"github.com/Aman-CERP/credcascade/internal/config"
	"github.com/Aman-CERP/credcascade/internal/entity"
	"github.com/Aman-CERP/credcascade/internal/output"
	"github.com/Aman-CERP/credcascade/internal/registry"
	"github.com/Aman-CERP/credcascade/internal/signals"
	"github.com/Aman-CERP/credcascade/internal/store"
	"github.com/Aman-CERP/credcascade/pkg/indexer"
)

// cascadeOp is the lifecycle event a cascade command raises.
type cascadeOp string

const (
	opSave   cascadeOp = "save"
	opDelete cascadeOp = "delete"
)

type cascadeOptions struct {
	op        cascadeOp
	kind      string
	id        string
	graphPath string
	dryRun    bool
}

// newCascadeCmd creates the save or delete command.
func newCascadeCmd(global *globalOptions, op cascadeOp) *cobra.Command {
	opts := cascadeOptions{op: op}

	short := "Re-index an entity and the entities that depend on it"
	long := `Raise a save event for an entity from the registry graph.

The entity is written to the index first. Its related entities are then
saved in turn, unless the entity is a foundational or redundant
credential set.`
	if op == opDelete {
		short = "Remove an entity and the entities that depend on it from the index"
		long = `Raise a delete event for an entity from the registry graph.

Related entities are cascaded first, then the entity itself is removed
from the index. Deletes always cascade.`
	}

	cmd := &cobra.Command{
		Use:   string(op) + " <kind> <id>",
		Short: short,
		Long: long + `

Kinds: credential_set, topic, credential_type.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kind, opts.id = args[0], args[1]
			return runCascade(cmd.Context(), cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graphPath, "graph", "g", "", "Registry graph YAML file (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the index operations without touching the index")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func runCascade(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts cascadeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}

	graph, err := registry.LoadFile(opts.graphPath)
	if err != nil {
		return err
	}

	e, err := resolveTarget(graph, opts)
	if err != nil {
		return err
	}

	backend, closeBackend, err := openBackend(cfg, opts.dryRun)
	if err != nil {
		return err
	}
	defer closeBackend()

	procOpts := []cascade.Option{cascade.WithMaxDepth(cfg.Cascade.MaxDepth)}
	if !cfg.Cascade.CycleGuard {
		procOpts = append(procOpts, cascade.WithoutCycleGuard())
	}
	proc, err := cascade.NewProcessor(backend, procOpts...)
	if err != nil {
		return err
	}

	dispatcher, err := signals.NewDispatcher(proc)
	if err != nil {
		return err
	}

	ev := signals.Saved(e)
	if opts.op == opDelete {
		ev = signals.Deleted(e)
	}

	slog.Info("cascade_started",
		slog.String("op", ev.Op.String()),
		slog.String("entity", e.Key().String()),
		slog.Bool("dry_run", opts.dryRun))

	if err := dispatcher.Dispatch(ctx, ev); err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if rec, ok := backend.(*indexer.Recorder); ok {
		for n, call := range rec.Calls() {
			out.Step(n+1, call.String())
		}
		out.Newline()
	}
	printSummary(out, opts, e, proc.Stats())
	return nil
}

// resolveTarget finds the entity named on the command line. A deleted
// credential set is dropped from the graph first so the loaded graph
// matches the post-delete state; the delete cascade then removes its
// topic's document.
func resolveTarget(graph *registry.Graph, opts cascadeOptions) (entity.Entity, error) {
	kind := entity.Kind(opts.kind)
	if opts.op == opDelete && kind == entity.KindCredentialSet {
		cs, err := graph.RemoveCredentialSet(opts.id)
		if err != nil {
			return nil, err
		}
		return cs, nil
	}
	return graph.Lookup(kind, opts.id)
}

// openBackend returns the backend a cascade writes to and a function that
// releases it. A dry run records calls instead of indexing.
func openBackend(cfg *config.Config, dryRun bool) (cascade.Backend, func(), error) {
	if dryRun {
		return indexer.NewRecorder(), func() {}, nil
	}

	var (
		basePath string
		lock     *store.DirLock
	)
	if store.Backend(cfg.Index.Backend) != store.BackendMemory {
		lock = store.NewDirLock(cfg.Index.DataDir)
		if err := lock.TryLock(); err != nil {
			return nil, nil, err
		}
		basePath = store.IndexBasePath(cfg.Index.DataDir)
	}
	unlock := func() {
		if lock != nil {
			_ = lock.Unlock()
		}
	}

	idx, err := store.NewIndexWithBackend(basePath, cfg.Index.Backend)
	if err != nil {
		unlock()
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}

	ix, err := indexer.NewDocumentIndexer(
		indexer.WithIndex(idx),
		indexer.WithDedupeCache(cfg.Index.DedupeCacheSize),
		indexer.WithRetry(cfg.RetryConfig()),
	)
	if err != nil {
		_ = idx.Close()
		unlock()
		return nil, nil, err
	}

	return ix, func() {
		stats := ix.Stats()
		slog.Debug("index_closed",
			slog.Int("documents", stats.DocumentCount),
			slog.Int64("skipped_writes", stats.SkippedWrites))
		if err := ix.Close(); err != nil {
			slog.Warn("index_close_failed", slog.String("error", err.Error()))
		}
		unlock()
	}, nil
}

func printSummary(out *output.Writer, opts cascadeOptions, e entity.Entity, stats cascade.Stats) {
	verb := "Saved"
	if opts.op == opDelete {
		verb = "Deleted"
	}
	if opts.dryRun {
		verb += " (dry run)"
	}

	out.Successf("%s %s", verb, e.Key())
	out.KeyValue("writes", stats.Writes)
	out.KeyValue("removes", stats.Removes)
	if stats.Revisits > 0 {
		out.KeyValue("revisits", stats.Revisits)
	}
	if stats.Suppressed > 0 {
		out.Warningf("cascade suppressed for %d entity(s); related entities were not re-indexed", stats.Suppressed)
	}
}
