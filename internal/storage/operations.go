package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
)

const operationColumns = `id, batch_id, operation_type, source_path,
	COALESCE(destination_path, ''), COALESCE(original_name, ''),
	COALESCE(new_name, ''), timestamp, status, error, COALESCE(backup_path, '')`

// RecordBatch persists a closed batch together with its operations, then
// prunes batches beyond the retention cap.
func (s *SQLiteStore) RecordBatch(ctx context.Context, batch *model.OperationBatch) error {
	if batch == nil || batch.ID == "" {
		return fmt.Errorf("batch must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO operation_batches (id, created_at, description) VALUES (?, ?, ?)`,
		batch.ID, batch.CreatedAt, batch.Description); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	for i, op := range batch.Operations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO operations
				(id, batch_id, position, operation_type, source_path, destination_path,
				 original_name, new_name, timestamp, status, error, backup_path)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			op.ID, batch.ID, i, op.OperationType, op.SourcePath,
			nullable(op.DestinationPath), nullable(op.OriginalName), nullable(op.NewName),
			op.Timestamp, op.Status, op.Error, nullable(op.BackupPath)); err != nil {
			return fmt.Errorf("failed to insert operation %s: %w", op.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	if err := s.pruneLocked(ctx); err != nil {
		slog.Warn("failed to prune history", "error", err)
	}

	slog.Debug("recorded batch", "batch_id", batch.ID, "operations", len(batch.Operations))
	return nil
}

// ListBatches returns up to limit batches, most recent first, each with its
// operations in execution order.
func (s *SQLiteStore) ListBatches(ctx context.Context, limit int) ([]model.OperationBatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, description
		FROM operation_batches
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.OperationBatch
	for rows.Next() {
		var batch model.OperationBatch
		if err := rows.Scan(&batch.ID, &batch.CreatedAt, &batch.Description); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	for i := range batches {
		ops, err := s.operationsForBatch(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Operations = ops
	}

	return batches, nil
}

// RecentCompletedBatches returns up to n batches that still contain
// completed operations, most recent first.
func (s *SQLiteStore) RecentCompletedBatches(ctx context.Context, n int) ([]model.OperationBatch, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT b.id, b.created_at, b.description
		FROM operation_batches b
		JOIN operations o ON o.batch_id = b.id
		WHERE o.status = ?
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ?`, model.StatusCompleted, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query undoable batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.OperationBatch
	for rows.Next() {
		var batch model.OperationBatch
		if err := rows.Scan(&batch.ID, &batch.CreatedAt, &batch.Description); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	for i := range batches {
		ops, err := s.operationsForBatch(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Operations = ops
	}

	return batches, nil
}

// MarkOperation updates the status of a single recorded operation.
func (s *SQLiteStore) MarkOperation(ctx context.Context, operationID string, status model.OperationStatus, errMsg string) error {
	if operationID == "" {
		return fmt.Errorf("operation ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`UPDATE operations SET status = ?, error = ? WHERE id = ?`,
		status, errMsg, operationID)
	if err != nil {
		return fmt.Errorf("failed to update operation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: operation %s", common.ErrNotFound, operationID)
	}

	return nil
}

// ClearHistory removes all recorded batches and reclaims their backup slots.
func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeBackupsWhere(ctx, `SELECT backup_path FROM operations WHERE backup_path IS NOT NULL AND backup_path != ''`); err != nil {
		slog.Warn("failed to reclaim some backup slots", "error", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM operations`); err != nil {
		return fmt.Errorf("failed to clear operations: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM operation_batches`); err != nil {
		return fmt.Errorf("failed to clear batches: %w", err)
	}

	slog.Info("history cleared")
	return nil
}

// pruneLocked drops batches beyond MaxRetainedBatches, oldest first,
// deleting their backup slots. Caller holds s.mu.
func (s *SQLiteStore) pruneLocked(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM operation_batches
		ORDER BY created_at DESC, id DESC
		LIMIT -1 OFFSET ?`, MaxRetainedBatches)
	if err != nil {
		return fmt.Errorf("failed to query prunable batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan batch id: %w", err)
		}
		stale = append(stale, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating prunable batches: %w", err)
	}

	for _, id := range stale {
		if err := s.removeBackupsWhere(ctx,
			`SELECT backup_path FROM operations WHERE batch_id = ? AND backup_path IS NOT NULL AND backup_path != ''`, id); err != nil {
			slog.Warn("failed to reclaim backup slots for pruned batch", "batch_id", id, "error", err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM operations WHERE batch_id = ?`, id); err != nil {
			return fmt.Errorf("failed to prune operations for batch %s: %w", id, err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM operation_batches WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to prune batch %s: %w", id, err)
		}
		slog.Debug("pruned batch beyond retention cap", "batch_id", id)
	}

	return nil
}

func (s *SQLiteStore) removeBackupsWhere(ctx context.Context, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var firstErr error
	for rows.Next() {
		var backup string
		if err := rows.Scan(&backup); err != nil {
			return err
		}
		if err := os.Remove(backup); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return firstErr
}

func (s *SQLiteStore) operationsForBatch(ctx context.Context, batchID string) ([]model.Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE batch_id = ?
		ORDER BY position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ops []model.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	return ops, nil
}

func scanOperation(rows *sql.Rows) (model.Operation, error) {
	var op model.Operation
	if err := rows.Scan(&op.ID, &op.BatchID, &op.OperationType, &op.SourcePath,
		&op.DestinationPath, &op.OriginalName, &op.NewName,
		&op.Timestamp, &op.Status, &op.Error, &op.BackupPath); err != nil {
		return model.Operation{}, fmt.Errorf("failed to scan operation: %w", err)
	}
	return op, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
