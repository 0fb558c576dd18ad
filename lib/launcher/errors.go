// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"errors"
	"fmt"
)

var (
	// ErrLaunchInProgress is wrapped by the *StateError returned when
	// Launch or Repair is called while a launch is being set up or
	// monitored.
	ErrLaunchInProgress = errors.New("a launch is already in progress")

	// ErrRepairInProgress is wrapped by the *StateError returned when
	// Launch is called during Repair.
	ErrRepairInProgress = errors.New("a repair is in progress")

	// ErrNoWindow is wrapped by the *StateError returned by
	// ResizeWindow when no game window is tracked.
	ErrNoWindow = errors.New("no game window is being tracked")

	// ErrCanceled is returned by Launch when Reset interrupted the
	// launch before the monitor started.
	ErrCanceled = errors.New("launch canceled")

	// ErrClosed is returned by operations on a closed Launcher.
	ErrClosed = errors.New("launcher is closed")
)

// ValidationError reports an unusable configuration field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid launch configuration: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AuthError reports a failed or timed-out login.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authenticating %s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProcessStartError reports that the helper executable could not be
// started.
type ProcessStartError struct {
	Path string
	Err  error
}

func (e *ProcessStartError) Error() string {
	return fmt.Sprintf("starting helper %s: %v", e.Path, e.Err)
}

func (e *ProcessStartError) Unwrap() error { return e.Err }

// WindowModeError reports that the windowed marker could not be
// applied and no subscriber chose to proceed.
type WindowModeError struct {
	Mode WindowMode
	Path string
	Err  error
}

func (e *WindowModeError) Error() string {
	return fmt.Sprintf("applying %s window mode at %s: %v", e.Mode, e.Path, e.Err)
}

func (e *WindowModeError) Unwrap() error { return e.Err }

// PopupKillError reports that the post-game popup could not be
// terminated.
type PopupKillError struct {
	Process string
	Err     error
}

func (e *PopupKillError) Error() string {
	return fmt.Sprintf("terminating %s popup: %v", e.Process, e.Err)
}

func (e *PopupKillError) Unwrap() error { return e.Err }

// StateError reports an operation that is not valid in the current
// state.
type StateError struct {
	Op    string
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s: %v", e.Op, e.State, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }
