package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend names an Index implementation.
type Backend string

const (
	// BackendSQLite uses SQLite FTS5 (default).
	// WAL mode allows concurrent readers from other processes.
	BackendSQLite Backend = "sqlite"

	// BackendBleve uses Bleve v2 with BoltDB - single process only.
	BackendBleve Backend = "bleve"

	// BackendMemory keeps documents in memory only.
	BackendMemory Backend = "memory"
)

// NewIndexWithBackend creates an Index using the specified backend.
// basePath is the path without extension; the extension is added per
// backend (.db for SQLite, .bleve for Bleve). An empty basePath creates an
// in-memory index for any backend.
func NewIndexWithBackend(basePath string, backend string) (Index, error) {
	switch Backend(backend) {
	case BackendSQLite, "":
		var path string
		if basePath != "" {
			path = basePath + ".db"
		}
		return NewSQLiteIndex(path)

	case BackendBleve:
		var path string
		if basePath != "" {
			path = basePath + ".bleve"
		}
		return NewBleveIndex(path)

	case BackendMemory:
		return NewMemoryIndex(), nil

	default:
		return nil, fmt.Errorf("unknown index backend: %s (valid options: sqlite, bleve, memory)", backend)
	}
}

// DetectBackend detects which backend an existing index under basePath uses.
// Returns an empty string if no index exists.
func DetectBackend(basePath string) Backend {
	if fileExists(basePath + ".db") {
		return BackendSQLite
	}
	if dirExists(basePath + ".bleve") {
		return BackendBleve
	}
	return ""
}

// IndexBasePath returns the base path of the index inside dataDir.
func IndexBasePath(dataDir string) string {
	return filepath.Join(dataDir, "index")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
