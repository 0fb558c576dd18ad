// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"strconv"
)

// ErrWindowGone is returned by window operations when the handle no
// longer refers to a window. The monitor treats it as "closed".
var ErrWindowGone = errors.New("window no longer exists")

// WindowHandle identifies a top-level window. On X11 it is the window
// XID.
type WindowHandle uint64

func (h WindowHandle) String() string {
	return "0x" + strconv.FormatUint(uint64(h), 16)
}

// Probe answers questions about processes and windows. Every method may
// block briefly and honours ctx.
type Probe interface {
	// ProcessAlive reports whether any process named name is running.
	ProcessAlive(ctx context.Context, name string) (bool, error)

	// FindWindow returns the first top-level window with the given
	// class. found is false (with a nil error) when there is none.
	FindWindow(ctx context.Context, class string) (handle WindowHandle, found bool, err error)

	// WindowVisible reports whether the window is mapped and viewable.
	// It returns ErrWindowGone when the handle is stale.
	WindowVisible(ctx context.Context, handle WindowHandle) (bool, error)

	// ResizeWindow sets the window's client size in pixels.
	ResizeWindow(ctx context.Context, handle WindowHandle, width, height int) error

	// ForceTerminate kills every process named name. Finding no such
	// process is not an error.
	ForceTerminate(ctx context.Context, name string) error
}

// Helper is a started helper process.
type Helper interface {
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}

	// Err returns the exit error after Done is closed; nil for a
	// zero exit status.
	Err() error

	// Kill terminates the helper and everything in its process group.
	Kill() error

	// Pid returns the operating system process ID.
	Pid() int
}

// Starter launches the helper executable with a single argument (the
// launch token).
type Starter interface {
	StartHelper(ctx context.Context, path, argument string) (Helper, error)
}
