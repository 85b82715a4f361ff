package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRefID    = errors.New("invalid_ref_id")
	ErrInvalidPayload  = errors.New("invalid_payload")
	ErrInvalidStage    = errors.New("invalid_stage")
	ErrStageRequired   = errors.New("stage_required")
	ErrInvalidAction   = errors.New("invalid_action")
	ErrNotFound        = errors.New("not_found")
	ErrRecordLocked    = errors.New("record_locked")
	ErrPayloadTooLarge = errors.New("payload_too_large")
	ErrStorageFailure  = errors.New("storage_failure")
)

// StorageError wraps a blob store failure. It matches ErrStorageFailure and
// the underlying cause with errors.Is.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func NewStorageError(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageFailure, e.Err}
}

func (e *StorageError) StorageFailure() bool { return true }
