// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/fileorg/fileorg/internal/model"
)

// HistoryStore defines the contract for the operation history layer. It is
// the single shared mutable resource across execute and undo flows;
// implementations serialize all mutations.
type HistoryStore interface {
	// RecordBatch persists a closed batch together with its operations.
	RecordBatch(ctx context.Context, batch *model.OperationBatch) error

	// ListBatches returns up to limit batches, most recent first.
	ListBatches(ctx context.Context, limit int) ([]model.OperationBatch, error)

	// RecentCompletedBatches returns up to n batches that still contain
	// completed (undoable) operations, most recent first.
	RecentCompletedBatches(ctx context.Context, n int) ([]model.OperationBatch, error)

	// MarkOperation updates the status of a single recorded operation.
	MarkOperation(ctx context.Context, operationID string, status model.OperationStatus, errMsg string) error

	// NewBackupSlot reserves a fresh path in the backup area for one file.
	NewBackupSlot(fileName string) (string, error)

	// ClearHistory removes all recorded batches and reclaims backup slots.
	ClearHistory(ctx context.Context) error

	// Migrate brings the schema up to the expected version.
	Migrate(ctx context.Context) error

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
