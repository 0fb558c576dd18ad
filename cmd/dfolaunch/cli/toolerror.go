// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so scripts driving dfolaunch
// can tell bad input from a missing resource or an internal failure.
type ErrorCategory string

const (
	// CategoryValidation: missing or malformed flags, arguments or
	// configuration. Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: the install directory, a config file or a
	// launch record does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict: the operation conflicts with current state,
	// such as a launch already in progress.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryInternal: I/O failures and everything unexpected.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error wrapping the underlying
// cause.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Code maps the category to a process exit code. Validation errors
// exit 2 like flag parse failures elsewhere.
func (c ErrorCategory) Code() int {
	switch c {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryConflict:
		return 4
	default:
		return 1
	}
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
