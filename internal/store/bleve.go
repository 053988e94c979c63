package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// BleveIndex implements Index on Bleve v2.
// An on-disk Bleve index is held exclusively by one process (BoltDB lock).
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// bleveDocument is the document structure for Bleve indexing.
type bleveDocument struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// validateBleveIntegrity checks if a Bleve index is valid before opening.
// Returns nil if valid or absent, error describing corruption if not.
func validateBleveIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// isCorruptionError checks if an error indicates Bleve index corruption.
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unexpected end of JSON") ||
		strings.Contains(errStr, "error parsing mapping JSON") ||
		strings.Contains(errStr, "failed to load segment") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// NewBleveIndex creates or opens a Bleve index at path.
// If path is empty, creates an in-memory index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	indexMapping := newIndexMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
		}

		if validErr := validateBleveIntegrity(path); validErr != nil {
			slog.Warn("bleve_index_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, cerrors.New(cerrors.ErrCodeCorruptIndex,
					fmt.Sprintf("index corrupted at %s and cannot be removed", path), removeErr)
			}
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		} else if err != nil && isCorruptionError(err) {
			slog.Warn("bleve_index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, cerrors.New(cerrors.ErrCodeCorruptIndex,
					fmt.Sprintf("index corrupted at %s and cannot be cleared", path), removeErr)
			}
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &BleveIndex{index: idx, path: path}, nil
}

// newIndexMapping keeps kind as an exact keyword and analyzes content.
func newIndexMapping() *mapping.IndexMappingImpl {
	kindField := bleve.NewTextFieldMapping()
	kindField.Analyzer = keyword.Name

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("kind", kindField)
	docMapping.AddFieldMappingsAt("content", contentField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Index adds documents to the index, replacing existing ones.
func (b *BleveIndex) Index(_ context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, bleveDocument{Kind: doc.Kind, Content: doc.Content}); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

// Delete removes documents from the index.
func (b *BleveIndex) Delete(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// AllIDs returns all document IDs in the index.
func (b *BleveIndex) AllIDs() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}

	docCount, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount)
	req.Fields = []string{}

	result, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search for all IDs: %w", err)
	}

	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}
	sort.Strings(ids)
	return ids, nil
}

// Stats returns index statistics.
func (b *BleveIndex) Stats() *IndexStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return &IndexStats{}
	}

	docCount, _ := b.index.DocCount()
	return &IndexStats{DocumentCount: int(docCount)}
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

var _ Index = (*BleveIndex)(nil)
