// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"sync/atomic"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/pathswap"
	"github.com/dfolaunch/dfolaunch/lib/probe"
)

// Event is published to subscribers. The concrete types are
// StateChanged, *WindowModeFailed, LaunchFailed, FileSwapFailed,
// PopupKillFailed and WindowResizeFailed.
type Event interface {
	// EventLaunchID identifies the launch the event belongs to.
	EventLaunchID() string
}

// StateChanged is published after every state transition.
type StateChanged struct {
	LaunchID string
	From     State
	To       State
	At       time.Time
}

// WindowModeFailed is published when the windowed marker cannot be
// created or removed. The launch fails with a *WindowModeError unless
// a subscriber calls Proceed before returning.
type WindowModeFailed struct {
	LaunchID string
	Mode     WindowMode
	Path     string
	Err      error

	proceed atomic.Bool
}

// Proceed lets the launch continue in whatever window mode the game
// picks on its own.
func (e *WindowModeFailed) Proceed() { e.proceed.Store(true) }

// Proceeding reports whether a subscriber has called Proceed.
func (e *WindowModeFailed) Proceeding() bool { return e.proceed.Load() }

// LaunchFailed is published when Launch returns an error after the
// launch was accepted.
type LaunchFailed struct {
	LaunchID string
	Err      error
}

// FileSwapFailed reports a swap, switch-back or repair failure. Err is
// usually a *pathswap.Error; check Inconsistent on it.
type FileSwapFailed struct {
	LaunchID string
	Op       string
	Spec     pathswap.Spec
	Err      error
}

// PopupKillFailed reports that ClosePopup could not kill the game
// process. Err is a *PopupKillError.
type PopupKillFailed struct {
	LaunchID string
	Err      error
}

// WindowResizeFailed reports a failed window resize. The launch is not
// affected.
type WindowResizeFailed struct {
	LaunchID string
	Handle   probe.WindowHandle
	Width    int
	Height   int
	Err      error
}

func (e StateChanged) EventLaunchID() string       { return e.LaunchID }
func (e *WindowModeFailed) EventLaunchID() string  { return e.LaunchID }
func (e LaunchFailed) EventLaunchID() string       { return e.LaunchID }
func (e FileSwapFailed) EventLaunchID() string     { return e.LaunchID }
func (e PopupKillFailed) EventLaunchID() string    { return e.LaunchID }
func (e WindowResizeFailed) EventLaunchID() string { return e.LaunchID }
