package model

import "time"

// OperationType is the kind of filesystem mutation an operation performs.
type OperationType string

// Operation type constants.
const (
	OpMove   OperationType = "move"
	OpCopy   OperationType = "copy"
	OpRename OperationType = "rename"
	OpDelete OperationType = "delete"
)

// OperationStatus tracks an operation through its lifecycle.
type OperationStatus string

// Operation status constants. Completed (until undone), undone and failed
// are terminal.
const (
	StatusPending    OperationStatus = "pending"
	StatusInProgress OperationStatus = "in_progress"
	StatusCompleted  OperationStatus = "completed"
	StatusFailed     OperationStatus = "failed"
	StatusUndone     OperationStatus = "undone"
)

// PlannedOperation is a not-yet-executed operation produced by the planner.
// It is ephemeral: consumed by the executor, never persisted on its own.
type PlannedOperation struct {
	FileID        string        `json:"file_id"`
	FileName      string        `json:"file_name"`
	OperationType OperationType `json:"operation_type"`
	Source        string        `json:"source"`
	Destination   string        `json:"destination"`
	Category      string        `json:"category,omitempty"`
}

// Operation is the persisted record of one executed filesystem mutation.
// BackupPath is set exactly when the operation has been executed and is
// reversible; a delete always takes a backup before removal.
type Operation struct {
	Timestamp       time.Time       `json:"timestamp"`
	ID              string          `json:"id"`
	OperationType   OperationType   `json:"operation_type"`
	SourcePath      string          `json:"source_path"`
	DestinationPath string          `json:"destination_path,omitempty"`
	OriginalName    string          `json:"original_name,omitempty"`
	NewName         string          `json:"new_name,omitempty"`
	Status          OperationStatus `json:"status"`
	Error           string          `json:"error,omitempty"`
	BatchID         string          `json:"batch_id,omitempty"`
	BackupPath      string          `json:"backup_path,omitempty"`
}

// Reversible reports whether the operation can be undone in its current
// state. Only completed operations are candidates.
func (o *Operation) Reversible() bool {
	if o.Status != StatusCompleted {
		return false
	}
	switch o.OperationType {
	case OpMove, OpCopy, OpRename:
		return o.DestinationPath != ""
	case OpDelete:
		return o.BackupPath != ""
	default:
		return false
	}
}

// OperationBatch groups the operations executed together as one undo unit.
// Batches are append-only once closed; members are only ever mutated to be
// marked undone.
type OperationBatch struct {
	CreatedAt   time.Time   `json:"created_at"`
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Operations  []Operation `json:"operations"`
}
