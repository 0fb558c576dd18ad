// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package pathswap

import (
	"errors"
	"fmt"
)

// Operation names used in [Error.Op].
const (
	OpSwap       = "swap"
	OpSwitchBack = "switch back"
	OpRepair     = "repair"
)

var (
	// ErrInconsistent matches errors whose rollback failed, leaving the
	// three paths half-exchanged.
	ErrInconsistent = errors.New("filesystem is now inconsistent")

	ErrNormalMissing = errors.New("normal path does not exist")
	ErrCustomMissing = errors.New("custom path does not exist")
	ErrTempExists    = errors.New("temp path already exists")
	ErrCustomExists  = errors.New("custom path already exists")
	ErrTypeMismatch  = errors.New("normal and custom paths are not the same kind")
	ErrAmbiguous     = errors.New("normal, custom and temp paths all exist")
)

// Error reports a failed swap, switch-back or repair.
type Error struct {
	// Op is OpSwap, OpSwitchBack or OpRepair.
	Op string

	// Spec is the swap that failed.
	Spec Spec

	// Step describes the move that failed ("rename A to B"). Empty
	// when a precondition failed and nothing was touched.
	Step string

	// Err is the cause.
	Err error

	// RolledBack is true when an earlier move of the same operation
	// was successfully undone after Err.
	RolledBack bool

	// UndoErr is set when undoing the earlier move also failed.
	UndoErr error
}

// Inconsistent reports whether the filesystem was left
// half-exchanged.
func (e *Error) Inconsistent() bool { return e.UndoErr != nil }

func (e *Error) Error() string {
	switch {
	case e.UndoErr != nil:
		return fmt.Sprintf("FILESYSTEM IS NOW INCONSISTENT: %s %s: %s: %v; undoing the previous move also failed: %v (run repair before the next launch)",
			e.Op, e.Spec, e.Step, e.Err, e.UndoErr)
	case e.RolledBack:
		return fmt.Sprintf("%s %s: %s: %v (previous move undone, files restored)", e.Op, e.Spec, e.Step, e.Err)
	case e.Step != "":
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Spec, e.Step, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Spec, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	if e.UndoErr != nil {
		return []error{e.Err, ErrInconsistent, e.UndoErr}
	}
	return []error{e.Err}
}
