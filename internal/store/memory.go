package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryIndex is a map-backed Index. Nothing is persisted.
type MemoryIndex struct {
	mu     sync.RWMutex
	docs   map[string]Document
	closed bool
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]Document)}
}

// Index implements Index.
func (m *MemoryIndex) Index(_ context.Context, docs []*Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, doc := range docs {
		m.docs[doc.ID] = *doc
	}
	return nil
}

// Delete implements Index.
func (m *MemoryIndex) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, id := range ids {
		delete(m.docs, id)
	}
	return nil
}

// Get returns the stored document with the given ID.
func (m *MemoryIndex) Get(id string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	return doc, ok
}

// AllIDs implements Index.
func (m *MemoryIndex) AllIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Stats implements Index.
func (m *MemoryIndex) Stats() *IndexStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &IndexStats{DocumentCount: len(m.docs)}
}

// Close implements Index.
func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

var _ Index = (*MemoryIndex)(nil)
