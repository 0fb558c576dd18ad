// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package pathswap

import (
	"errors"
	"os"
)

// Result is a completed swap waiting to be switched back.
type Result struct {
	spec     Spec
	fileType FileType
	reverted bool
}

// Spec returns the paths that were swapped.
func (r *Result) Spec() Spec { return r.spec }

// FileType reports whether a file or a directory was swapped.
func (r *Result) FileType() FileType { return r.fileType }

// Reverted reports whether SwitchBack has completed.
func (r *Result) Reverted() bool { return r.reverted }

// Swap moves Normal to Temp and Custom to Normal. Normal and Custom
// must exist and be the same kind; Temp must not exist. On failure the
// returned error is always an [*Error].
func Swap(spec Spec) (*Result, error) {
	normalInfo, err := os.Lstat(spec.Normal)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = ErrNormalMissing
		}
		return nil, &Error{Op: OpSwap, Spec: spec, Err: err}
	}
	customInfo, err := os.Lstat(spec.Custom)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = ErrCustomMissing
		}
		return nil, &Error{Op: OpSwap, Spec: spec, Err: err}
	}
	if exists(spec.Temp) {
		return nil, &Error{Op: OpSwap, Spec: spec, Err: ErrTempExists}
	}
	fileType := fileTypeOf(normalInfo)
	if fileTypeOf(customInfo) != fileType {
		return nil, &Error{Op: OpSwap, Spec: spec, Err: ErrTypeMismatch}
	}

	if err := move(spec.Normal, spec.Temp, fileType); err != nil {
		return nil, &Error{Op: OpSwap, Spec: spec, Step: describeMove(spec.Normal, spec.Temp), Err: err}
	}
	if err := move(spec.Custom, spec.Normal, fileType); err != nil {
		return nil, undo(OpSwap, spec, describeMove(spec.Custom, spec.Normal), err, spec.Temp, spec.Normal, fileType)
	}
	return &Result{spec: spec, fileType: fileType}, nil
}

// SwitchBack moves Normal back to Custom and Temp back to Normal.
// Calling it again after it has succeeded does nothing. A failed
// SwitchBack leaves the result usable for another attempt.
func SwitchBack(result *Result) error {
	if result == nil || result.reverted {
		return nil
	}
	spec := result.spec

	if !exists(spec.Normal) {
		return &Error{Op: OpSwitchBack, Spec: spec, Err: ErrNormalMissing}
	}
	if exists(spec.Custom) {
		return &Error{Op: OpSwitchBack, Spec: spec, Err: ErrCustomExists}
	}

	if err := move(spec.Normal, spec.Custom, result.fileType); err != nil {
		return &Error{Op: OpSwitchBack, Spec: spec, Step: describeMove(spec.Normal, spec.Custom), Err: err}
	}
	if err := move(spec.Temp, spec.Normal, result.fileType); err != nil {
		return undo(OpSwitchBack, spec, describeMove(spec.Temp, spec.Normal), err, spec.Custom, spec.Normal, result.fileType)
	}
	result.reverted = true
	return nil
}

// undo reverses the first move of an operation after its second move
// failed with cause, by moving from back to to.
func undo(op string, spec Spec, step string, cause error, from, to string, fileType FileType) *Error {
	failure := &Error{Op: op, Spec: spec, Step: step, Err: cause}
	if err := move(from, to, fileType); err != nil {
		failure.UndoErr = err
		return failure
	}
	failure.RolledBack = true
	return failure
}
