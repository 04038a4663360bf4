// Package executor performs planned filesystem operations as trackable,
// reversible units and undoes recorded batches.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
	"github.com/fileorg/fileorg/internal/service"
)

// Executor runs operation batches. Mutations within one batch execute
// sequentially to keep backup and undo bookkeeping consistent.
type Executor struct {
	history service.HistoryStore
	logger  *slog.Logger
	undoMu  sync.Mutex
}

// New creates an executor recording into the given history store.
func New(history service.HistoryStore, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{history: history, logger: logger}
}

// Execute runs every planned operation in order, emitting one progress event
// per item. A failed item is marked failed and does not abort its siblings;
// the caller inspects per-item status. The resulting batch is recorded in
// history before returning.
//
// Progress sends never block: a non-nil progress channel must have capacity
// for len(planned)+2 events or later events are dropped.
func (e *Executor) Execute(ctx context.Context, planned []model.PlannedOperation, description string, progress chan<- model.OperationProgress) (*model.OperationBatch, error) {
	batch := &model.OperationBatch{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		Description: description,
		Operations:  make([]model.Operation, 0, len(planned)),
	}

	total := len(planned)

	for i, plan := range planned {
		if err := ctx.Err(); err != nil {
			// Record what ran before the cancellation so it stays undoable.
			break
		}

		emit(progress, model.OperationProgress{
			Event:          model.EventProcessing,
			CurrentFile:    plan.FileName,
			CompletedCount: i,
			TotalCount:     total,
			Percentage:     percentage(i, total),
		})

		op := model.Operation{
			ID:            uuid.NewString(),
			OperationType: plan.OperationType,
			SourcePath:    plan.Source,
			OriginalName:  plan.FileName,
			Timestamp:     time.Now(),
			Status:        model.StatusPending,
			BatchID:       batch.ID,
		}
		if plan.OperationType != model.OpDelete {
			op.DestinationPath = plan.Destination
		}
		if plan.OperationType == model.OpRename {
			op.NewName = filepath.Base(plan.Destination)
		}

		op.Status = model.StatusInProgress
		if err := e.apply(&op, plan); err != nil {
			op.Status = model.StatusFailed
			op.Error = err.Error()
			e.logger.Error("operation failed",
				"type", plan.OperationType,
				"source", plan.Source,
				"error", err)
		} else {
			op.Status = model.StatusCompleted
		}

		batch.Operations = append(batch.Operations, op)
	}

	// Operations that already ran mutated the filesystem; the batch must be
	// recorded even when ctx was canceled mid-run or they can never be undone.
	if err := e.history.RecordBatch(context.WithoutCancel(ctx), batch); err != nil {
		return batch, fmt.Errorf("failed to record batch: %w", err)
	}

	emit(progress, model.OperationProgress{
		Event:          model.EventCompleted,
		CompletedCount: len(batch.Operations),
		TotalCount:     total,
		Percentage:     percentage(len(batch.Operations), total),
	})

	e.logger.Info("batch executed",
		"batch_id", batch.ID,
		"operations", len(batch.Operations))

	return batch, nil
}

// apply performs one filesystem mutation, setting BackupPath on the
// operation when a backup slot is taken.
func (e *Executor) apply(op *model.Operation, plan model.PlannedOperation) error {
	if _, err := os.Stat(plan.Source); err != nil {
		switch {
		case os.IsNotExist(err):
			return common.NewOpError(string(plan.OperationType), plan.Source, common.ErrPathNotFound)
		case os.IsPermission(err):
			return common.NewOpError(string(plan.OperationType), plan.Source, common.ErrPermissionDenied)
		default:
			return common.NewOpError(string(plan.OperationType), plan.Source, err)
		}
	}

	switch plan.OperationType {
	case model.OpMove, model.OpRename:
		if err := ensureDestination(plan.Destination); err != nil {
			return common.NewOpError(string(plan.OperationType), plan.Destination, err)
		}
		if err := moveFile(plan.Source, plan.Destination); err != nil {
			return common.NewOpError(string(plan.OperationType), plan.Source, err)
		}
		return nil

	case model.OpCopy:
		if err := ensureDestination(plan.Destination); err != nil {
			return common.NewOpError(string(plan.OperationType), plan.Destination, err)
		}
		if err := copyFile(plan.Source, plan.Destination); err != nil {
			return common.NewOpError(string(plan.OperationType), plan.Source, err)
		}
		return nil

	case model.OpDelete:
		// Relocate to a backup slot before the logical delete completes, so
		// every delete is reversible.
		slot, err := e.history.NewBackupSlot(plan.FileName)
		if err != nil {
			return common.NewOpError(string(plan.OperationType), plan.Source, err)
		}
		if err := moveFile(plan.Source, slot); err != nil {
			return common.NewOpError(string(plan.OperationType), plan.Source, err)
		}
		op.BackupPath = slot
		return nil

	default:
		return fmt.Errorf("unknown operation type: %s", plan.OperationType)
	}
}

// Undo reverses the most recent steps batches, most recent first, each batch
// in reverse operation order. It returns every attempted operation: members
// that reversed carry status undone, members that could not keep their
// previous status with Error describing the failure. Batches with mixed
// outcomes stay partially undone.
func (e *Executor) Undo(ctx context.Context, steps int) ([]model.Operation, error) {
	if steps <= 0 {
		return nil, nil
	}

	// Serialize undos so two callers cannot reverse the same batch twice.
	e.undoMu.Lock()
	defer e.undoMu.Unlock()

	batches, err := e.history.RecentCompletedBatches(ctx, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}

	var attempted []model.Operation

	for _, batch := range batches {
		for i := len(batch.Operations) - 1; i >= 0; i-- {
			op := batch.Operations[i]
			if !op.Reversible() {
				continue
			}

			if undoErr := e.reverse(&op); undoErr != nil {
				op.Error = undoErr.Error()
				e.logger.Warn("undo failed for operation",
					"operation_id", op.ID,
					"type", op.OperationType,
					"source", op.SourcePath,
					"error", undoErr)
			} else {
				op.Status = model.StatusUndone
				if markErr := e.history.MarkOperation(ctx, op.ID, model.StatusUndone, ""); markErr != nil {
					e.logger.Error("failed to mark operation undone",
						"operation_id", op.ID,
						"error", markErr)
				}
			}

			attempted = append(attempted, op)
		}
	}

	return attempted, nil
}

// reverse applies the inverse of one completed operation.
func (e *Executor) reverse(op *model.Operation) error {
	switch op.OperationType {
	case model.OpMove, model.OpRename:
		if _, err := os.Stat(op.DestinationPath); err != nil {
			return common.NewOpError("undo "+string(op.OperationType), op.DestinationPath, common.ErrBackupMissing)
		}
		if _, err := os.Stat(op.SourcePath); err == nil {
			return common.NewOpError("undo "+string(op.OperationType), op.SourcePath, common.ErrConflictDetected)
		}
		if err := ensureDestination(op.SourcePath); err != nil {
			return common.NewOpError("undo "+string(op.OperationType), op.SourcePath, err)
		}
		return moveFile(op.DestinationPath, op.SourcePath)

	case model.OpCopy:
		// Undo removes the created copy; the source was never touched.
		// Directories created for the copy are deliberately left in place.
		if _, err := os.Stat(op.DestinationPath); err != nil {
			return common.NewOpError("undo copy", op.DestinationPath, common.ErrBackupMissing)
		}
		return os.Remove(op.DestinationPath)

	case model.OpDelete:
		if _, err := os.Stat(op.BackupPath); err != nil {
			return common.NewOpError("undo delete", op.BackupPath, common.ErrBackupMissing)
		}
		if _, err := os.Stat(op.SourcePath); err == nil {
			return common.NewOpError("undo delete", op.SourcePath, common.ErrConflictDetected)
		}
		if err := ensureDestination(op.SourcePath); err != nil {
			return common.NewOpError("undo delete", op.SourcePath, err)
		}
		return moveFile(op.BackupPath, op.SourcePath)

	default:
		return fmt.Errorf("unknown operation type: %s", op.OperationType)
	}
}

// ensureDestination creates parent directories and rejects an existing
// destination instead of silently overwriting.
func ensureDestination(destination string) error {
	if _, err := os.Stat(destination); err == nil {
		return common.ErrDestinationConflict
	}
	return os.MkdirAll(filepath.Dir(destination), 0o750)
}

// moveFile renames, falling back to copy+remove for cross-device moves.
func moveFile(source, destination string) error {
	err := os.Rename(source, destination)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	if copyErr := copyFile(source, destination); copyErr != nil {
		return copyErr
	}
	return os.Remove(source)
}

// copyFile duplicates a regular file, preserving its permission bits.
func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(destination)
		return err
	}
	return out.Close()
}

func emit(progress chan<- model.OperationProgress, event model.OperationProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- event:
	default:
	}
}

func percentage(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}
