package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// SQLiteIndex implements Index using SQLite FTS5.
// WAL mode lets a reader process inspect the index while a writer updates it.
type SQLiteIndex struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// validateSQLiteIntegrity checks if a SQLite FTS5 index is valid before opening.
// Returns nil if valid or absent, error describing corruption if not.
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                       WHERE type='table' AND name='documents'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("table 'documents' missing")
	}

	return nil
}

// NewSQLiteIndex creates or opens a SQLite FTS5 index at path.
// If path is empty, creates an in-memory index.
// A corrupted index file is removed and recreated empty.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		if validErr := validateSQLiteIntegrity(path); validErr != nil {
			slog.Warn("sqlite_index_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, cerrors.New(cerrors.ErrCodeCorruptIndex,
					fmt.Sprintf("index corrupted at %s and cannot be removed", path), removeErr)
			}
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")

			slog.Info("sqlite_index_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, replay saves to rebuild"))
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention; this also keeps an
	// in-memory database alive on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN params may be ignored by modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx := &SQLiteIndex{db: db, path: path}
	if err := idx.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return idx, nil
}

// initSchema creates the FTS5 table and the document registry.
func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- doc_id and kind are stored but not searchable
	CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
		doc_id UNINDEXED,
		kind UNINDEXED,
		content,
		tokenize='unicode61'
	);

	-- FTS5 doesn't expose rowid reliably, so IDs are tracked separately
	CREATE TABLE IF NOT EXISTS documents (
		doc_id TEXT PRIMARY KEY,
		kind TEXT NOT NULL
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Index adds documents to the index, replacing existing ones.
func (s *SQLiteIndex) Index(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifySQLiteError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	// FTS5 virtual tables don't support REPLACE, so delete first
	deleteStmt, err := tx.PrepareContext(ctx, `DELETE FROM fts_content WHERE doc_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fts_content(doc_id, kind, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare FTS statement: %w", err)
	}
	defer insertStmt.Close()

	idStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO documents(doc_id, kind) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare ID statement: %w", err)
	}
	defer idStmt.Close()

	for _, doc := range docs {
		if _, err := deleteStmt.ExecContext(ctx, doc.ID); err != nil {
			return classifySQLiteError("replace document "+doc.ID, err)
		}
		if _, err := insertStmt.ExecContext(ctx, doc.ID, doc.Kind, doc.Content); err != nil {
			return classifySQLiteError("index document "+doc.ID, err)
		}
		if _, err := idStmt.ExecContext(ctx, doc.ID, doc.Kind); err != nil {
			return classifySQLiteError("track document "+doc.ID, err)
		}
	}

	return classifySQLiteError("commit", tx.Commit())
}

// Delete removes documents from the index.
func (s *SQLiteIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifySQLiteError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	inClause := strings.Join(placeholders, ",")

	ftsQuery := fmt.Sprintf("DELETE FROM fts_content WHERE doc_id IN (%s)", inClause)
	if _, err := tx.ExecContext(ctx, ftsQuery, args...); err != nil {
		return classifySQLiteError("delete from FTS", err)
	}

	idsQuery := fmt.Sprintf("DELETE FROM documents WHERE doc_id IN (%s)", inClause)
	if _, err := tx.ExecContext(ctx, idsQuery, args...); err != nil {
		return classifySQLiteError("delete from documents", err)
	}

	return classifySQLiteError("commit", tx.Commit())
}

// AllIDs returns all document IDs in the index.
func (s *SQLiteIndex) AllIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.Query(`SELECT doc_id FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Stats returns index statistics.
func (s *SQLiteIndex) Stats() *IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return &IndexStats{}
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return &IndexStats{}
	}
	return &IndexStats{DocumentCount: count}
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// classifySQLiteError marks lock contention as retryable.
func classifySQLiteError(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return cerrors.New(cerrors.ErrCodeIndexLocked, op+": database is locked", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ Index = (*SQLiteIndex)(nil)
