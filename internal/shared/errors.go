package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks caller supplied data that violates a precondition.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence marks a backing store read or write failure.
	ErrPersistence = errors.New("persistence failed")
	// ErrPartialWrite marks a multi-step write that stopped after the parent row.
	ErrPartialWrite = errors.New("partial write")
	// ErrNotConfigured occurs when store connection parameters are missing.
	ErrNotConfigured = errors.New("store not configured")
)

// ValidationError describes a rejected field. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

// Validation builds a ValidationError.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a store failure for operation Op.
type PersistenceError struct {
	Op  string
	Err error
}

// Persistence wraps err unless it is nil or already classified.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrPartialWrite) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// PartialWriteError reports that the parent row of a multi-step write exists
// while its child rows do not. Callers either retry the child write keyed by
// ParentID or flag the parent for manual reconciliation.
type PartialWriteError struct {
	Op               string
	ParentID         int64
	ReconciliationID uuid.UUID
	Err              error
}

// NewPartialWrite builds a PartialWriteError with a fresh reconciliation id.
func NewPartialWrite(op string, parentID int64, err error) *PartialWriteError {
	return &PartialWriteError{Op: op, ParentID: parentID, ReconciliationID: uuid.New(), Err: err}
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: parent %d written, children failed (reconciliation %s): %v", e.Op, e.ParentID, e.ReconciliationID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPartialWrite) match.
func (e *PartialWriteError) Is(target error) bool {
	return target == ErrPartialWrite
}

// NotConfiguredError lists the missing connection parameters.
type NotConfiguredError struct {
	Missing []string
}

func (e *NotConfiguredError) Error() string {
	return "store not configured: missing " + strings.Join(e.Missing, ", ")
}

// Is lets errors.Is(err, ErrNotConfigured) match.
func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}
