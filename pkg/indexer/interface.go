package indexer

import (
	"context"

	"github.com/Aman-CERP/credcascade/internal/cascade"
)

// Indexer is a cascade.Backend that owns an index.
//
// Implementations must be thread-safe for concurrent use.
type Indexer interface {
	cascade.Backend

	// Clear removes all indexed documents.
	//
	// This is a destructive operation that cannot be undone.
	Clear(ctx context.Context) error

	// Stats returns current index statistics.
	//
	// The returned stats are a snapshot; values may change
	// immediately after the call if other goroutines modify the index.
	Stats() IndexStats

	// Close releases all resources held by the indexer.
	//
	// Behavior:
	//   - Safe to call multiple times (idempotent)
	//   - After Close, other methods may return errors
	Close() error
}

// IndexStats holds statistics about an index.
type IndexStats struct {
	// DocumentCount is the number of indexed documents.
	DocumentCount int

	// Writes is the number of documents written to the store.
	Writes int64

	// Removes is the number of documents removed from the store.
	Removes int64

	// SkippedWrites counts writes dropped because the document was unchanged.
	SkippedWrites int64
}
