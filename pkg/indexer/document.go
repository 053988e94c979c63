package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/credcascade/internal/entity"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
	"github.com/Aman-CERP/credcascade/internal/store"
)

// ErrNilStore is returned when attempting to create a DocumentIndexer without an index.
var ErrNilStore = errors.New("index store is required")

// DocumentIndexer writes entities to a [store.Index] as documents.
//
// It is the cascade.Backend the processor talks to in production. Every
// write renders the entity (see Render) and replaces the stored document;
// every remove deletes it by ID. Both are idempotent.
//
// With a dedupe cache configured, a write whose rendered document matches
// the last one written for that ID is skipped. Lock contention reported by
// the store is retried with backoff; any other failure is returned as an
// ERR_201_INDEX_WRITE_FAILED or ERR_202_INDEX_REMOVE_FAILED error.
//
// DocumentIndexer is safe for concurrent use.
type DocumentIndexer struct {
	store  store.Index
	seen   *lru.Cache[string, string] // doc ID -> content fingerprint
	retry  cerrors.RetryConfig
	mu     sync.RWMutex
	closed bool

	writes  atomic.Int64
	removes atomic.Int64
	skipped atomic.Int64
}

// Option configures a DocumentIndexer.
type Option func(*DocumentIndexer)

// WithIndex sets the index the documents are stored in.
//
// This is a required option; NewDocumentIndexer will return an error
// if no index is provided.
func WithIndex(s store.Index) Option {
	return func(i *DocumentIndexer) {
		i.store = s
	}
}

// WithDedupeCache remembers the fingerprint of the last size documents
// written so unchanged rewrites are skipped. A size of 0 or less disables it.
func WithDedupeCache(size int) Option {
	return func(i *DocumentIndexer) {
		if size <= 0 {
			i.seen = nil
			return
		}
		i.seen, _ = lru.New[string, string](size)
	}
}

// WithRetry sets the retry policy for lock contention.
func WithRetry(cfg cerrors.RetryConfig) Option {
	return func(i *DocumentIndexer) {
		i.retry = cfg
	}
}

// NewDocumentIndexer creates a new indexer with the given options.
//
// At minimum, WithIndex must be provided:
//
//	ix, err := NewDocumentIndexer(WithIndex(idx))
//
// Returns ErrNilStore if no index is provided.
func NewDocumentIndexer(opts ...Option) (*DocumentIndexer, error) {
	i := &DocumentIndexer{retry: cerrors.DefaultRetryConfig()}

	for _, opt := range opts {
		opt(i)
	}

	if i.store == nil {
		return nil, ErrNilStore
	}

	return i, nil
}

// Render converts an entity to the document stored for it. The document ID
// is the entity key ("kind:id"); the content is the entity's IndexText when
// it implements entity.Texter, and the key otherwise.
func Render(e entity.Entity) *store.Document {
	key := e.Key()
	content := key.String()
	if t, ok := e.(entity.Texter); ok {
		content = t.IndexText()
	}
	return &store.Document{
		ID:      key.String(),
		Kind:    string(key.Kind),
		Content: content,
	}
}

// WriteToIndex implements cascade.Backend.
func (i *DocumentIndexer) WriteToIndex(ctx context.Context, e entity.Entity) error {
	doc := Render(e)
	fp := fingerprint(doc)

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return store.ErrClosed
	}

	if i.seen != nil {
		if last, ok := i.seen.Get(doc.ID); ok && last == fp {
			i.skipped.Add(1)
			slog.Debug("index_write_skipped",
				slog.String("doc_id", doc.ID),
				slog.String("reason", "unchanged"))
			return nil
		}
	}

	err := cerrors.Retry(ctx, i.retry, func() error {
		return i.store.Index(ctx, []*store.Document{doc})
	})
	if err != nil {
		return cerrors.New(cerrors.ErrCodeIndexWrite,
			fmt.Sprintf("write %s", doc.ID), err).
			WithDetail("doc_id", doc.ID)
	}

	if i.seen != nil {
		i.seen.Add(doc.ID, fp)
	}
	i.writes.Add(1)
	return nil
}

// RemoveFromIndex implements cascade.Backend. Removing a document that was
// never written is not an error.
func (i *DocumentIndexer) RemoveFromIndex(ctx context.Context, e entity.Entity) error {
	id := e.Key().String()

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return store.ErrClosed
	}

	if i.seen != nil {
		i.seen.Remove(id)
	}

	err := cerrors.Retry(ctx, i.retry, func() error {
		return i.store.Delete(ctx, []string{id})
	})
	if err != nil {
		return cerrors.New(cerrors.ErrCodeIndexRemove,
			fmt.Sprintf("remove %s", id), err).
			WithDetail("doc_id", id)
	}

	i.removes.Add(1)
	return nil
}

// Clear removes all documents from the index.
//
// This retrieves all document IDs and deletes them.
// An empty index is a no-op.
func (i *DocumentIndexer) Clear(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.seen != nil {
		i.seen.Purge()
	}

	ids, err := i.store.AllIDs()
	if err != nil {
		return fmt.Errorf("get all IDs: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := i.store.Delete(ctx, ids); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	return nil
}

// Stats returns current index statistics.
func (i *DocumentIndexer) Stats() IndexStats {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return IndexStats{
		DocumentCount: i.store.Stats().DocumentCount,
		Writes:        i.writes.Load(),
		Removes:       i.removes.Load(),
		SkippedWrites: i.skipped.Load(),
	}
}

// Close releases the underlying index.
//
// This method is idempotent; calling it multiple times is safe.
func (i *DocumentIndexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}

	i.closed = true

	if err := i.store.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	return nil
}

func fingerprint(doc *store.Document) string {
	hash := sha256.Sum256([]byte(doc.Kind + "\x00" + doc.Content))
	return hex.EncodeToString(hash[:])
}

// Ensure DocumentIndexer implements Indexer at compile time.
var _ Indexer = (*DocumentIndexer)(nil)
