// Package store provides the search-index backends documents are written to
// and removed from: SQLite FTS5 (default), Bleve, and an in-memory map.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("index is closed")

// Document is the unit stored in an index.
type Document struct {
	ID      string // "kind:id" of the entity
	Kind    string // entity kind
	Content string // searchable text
}

// IndexStats provides statistics about an index.
type IndexStats struct {
	DocumentCount int
}

// Index stores documents keyed by ID.
type Index interface {
	// Index adds or replaces documents. Re-indexing an ID replaces it.
	Index(ctx context.Context, docs []*Document) error

	// Delete removes documents by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// AllIDs returns all document IDs in the index, sorted.
	AllIDs() ([]string, error)

	// Stats returns index statistics.
	Stats() *IndexStats

	// Close releases the index. Safe to call more than once.
	Close() error
}
