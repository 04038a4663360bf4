// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Classification errors.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrModelRejected    = errors.New("model rejected request")
	ErrParse            = errors.New("unparseable model response")
	ErrInvalidRule      = errors.New("invalid rule")

	// Filesystem errors.
	ErrDestinationConflict = errors.New("destination already exists")
	ErrBackupMissing       = errors.New("backup missing")
	ErrConflictDetected    = errors.New("destination externally modified")
	ErrPathNotFound        = errors.New("path not found")
	ErrPermissionDenied    = errors.New("permission denied")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// OpError carries enough context (file path, operation type) for a user to
// retry the failed operation manually.
type OpError struct {
	Err  error
	Op   string
	Path string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError wraps err with the operation type and file path it concerns.
func NewOpError(op, path string, err error) error {
	return &OpError{Op: op, Path: path, Err: err}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
