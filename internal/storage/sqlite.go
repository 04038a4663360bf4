// Package storage implements the operation history store on SQLite,
// including the backup area that makes deletes reversible.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MaxRetainedBatches caps how many batches stay undoable. Recording a new
// batch prunes the oldest beyond the cap together with their backup slots.
const MaxRetainedBatches = 50

// SQLiteStore implements service.HistoryStore using SQLite. All mutations
// are serialized behind a single mutex (single-writer discipline).
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	backupDir string
	mu        sync.Mutex
}

// NewSQLiteStore creates a history store at dbPath. The backup area lives in
// a backups/ directory next to the database file.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:        db,
		dbPath:    dbPath,
		backupDir: backupDir,
	}, nil
}

// BackupDir returns the directory holding backup slots.
func (s *SQLiteStore) BackupDir() string {
	return s.backupDir
}

// NewBackupSlot reserves a fresh uuid-named path in the backup area. The
// original file name is kept as a suffix so slots stay inspectable.
func (s *SQLiteStore) NewBackupSlot(fileName string) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	return filepath.Join(s.backupDir, uuid.NewString()+"_"+filepath.Base(fileName)), nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
