// Package indexer adapts the cascade processor's decisions to a search index.
//
// # Architecture
//
//	┌───────────────────┐
//	│ cascade.Processor │  (decides what to write/remove)
//	└─────────┬─────────┘
//	          │ cascade.Backend
//	┌─────────▼─────────┐
//	│  DocumentIndexer  │  ← This package
//	└─────────┬─────────┘
//	          │ store.Index
//	   ┌──────┼───────┐
//	   │      │       │
//	┌──▼───┐┌─▼───┐┌──▼───┐
//	│SQLite││Bleve││Memory│
//	└──────┘└─────┘└──────┘
//
// # Usage
//
//	idx, _ := store.NewIndexWithBackend(path, "sqlite")
//	ix, err := indexer.NewDocumentIndexer(indexer.WithIndex(idx))
//	if err != nil {
//	    return err
//	}
//	defer ix.Close()
//
//	proc, _ := cascade.NewProcessor(ix)
//	err = proc.HandleSave(ctx, credentialSet)
//
// Recorder is a Backend that only records the calls it receives. The CLI
// uses it for --dry-run.
//
// # Thread Safety
//
// DocumentIndexer and Recorder are safe for concurrent use.
package indexer
