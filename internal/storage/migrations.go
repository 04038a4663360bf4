package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fileorg/fileorg/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS operation_batches (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE TABLE IF NOT EXISTS operations (
					id TEXT PRIMARY KEY,
					batch_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					operation_type TEXT NOT NULL,
					source_path TEXT NOT NULL,
					destination_path TEXT,
					original_name TEXT,
					new_name TEXT,
					timestamp DATETIME NOT NULL,
					status TEXT NOT NULL,
					backup_path TEXT,
					FOREIGN KEY (batch_id) REFERENCES operation_batches(id)
				)`,
				`CREATE INDEX idx_operations_batch ON operations(batch_id)`,
				`CREATE INDEX idx_operations_status ON operations(status)`,
				`CREATE INDEX idx_batches_created ON operation_batches(created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Persist failure detail with operations",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE operations ADD COLUMN error TEXT NOT NULL DEFAULT ''`)
			return err
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("%w: failed to create migrations table: %v", common.ErrDatabaseCorrupted, err)
	}

	var current int
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("%w: failed to read schema version: %v", common.ErrDatabaseCorrupted, err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}
