// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"errors"
	"fmt"
)

// ErrSampleNotFound is returned when an operation targets a sample id that
// does not exist.
var ErrSampleNotFound = errors.New("muestra no encontrada")

// ValidationError signals malformed or out-of-range caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError signals a violated state-machine precondition, such as
// starting a sample while another one is already open for the same
// mesa/operator pair.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvariantError signals that computed values violate a business rule,
// e.g. a vote count that decreased between start and finalize. It points
// at likely data corruption upstream, not at the caller.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string { return e.Message }

// StateError signals an operation that is invalid for the current
// lifecycle state, e.g. cancel with nothing open.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// SourceUnavailableError wraps a failure of the external vote-count source.
// Distinguishable from caller errors so the UI can offer a retry.
type SourceUnavailableError struct {
	Err error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("fuente de conteo no disponible: %v", e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure of the persistence store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
