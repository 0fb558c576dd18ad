// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// X11 implements the window half of [Probe] with xdotool and xwininfo.
type X11 struct {
	Runner   Runner
	Xdotool  string
	Xwininfo string
}

// NewX11 returns an X11 probe using the tools found on PATH.
func NewX11(runner Runner) *X11 {
	if runner == nil {
		runner = OSRunner{}
	}
	return &X11{Runner: runner, Xdotool: "xdotool", Xwininfo: "xwininfo"}
}

// FindWindow implements [Probe]. xdotool exits non-zero with no output
// when nothing matches; that is reported as found == false.
func (x *X11) FindWindow(ctx context.Context, class string) (WindowHandle, bool, error) {
	output, err := x.Runner.Run(ctx, x.Xdotool, "search", "--classname", "^"+class+"$")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || ctx.Err() != nil {
			return 0, false, fmt.Errorf("searching for window class %q: %w", class, err)
		}
		if len(bytes.TrimSpace(output)) == 0 {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("searching for window class %q: %w: %s", class, err, bytes.TrimSpace(output))
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("parsing window id %q from xdotool: %w", line, err)
		}
		return WindowHandle(id), true, nil
	}
	return 0, false, nil
}

// WindowVisible implements [Probe] by reading the map state that
// xwininfo reports.
func (x *X11) WindowVisible(ctx context.Context, handle WindowHandle) (bool, error) {
	output, err := x.Runner.Run(ctx, x.Xwininfo, "-id", handle.String())
	if err != nil {
		if isBadWindow(output) {
			return false, ErrWindowGone
		}
		return false, fmt.Errorf("querying window %s: %w", handle, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if state, ok := strings.CutPrefix(line, "Map State:"); ok {
			return strings.TrimSpace(state) == "IsViewable", nil
		}
	}
	return false, fmt.Errorf("xwininfo output for window %s has no map state", handle)
}

// ResizeWindow implements [Probe].
func (x *X11) ResizeWindow(ctx context.Context, handle WindowHandle, width, height int) error {
	output, err := x.Runner.Run(ctx, x.Xdotool, "windowsize", strconv.FormatUint(uint64(handle), 10), strconv.Itoa(width), strconv.Itoa(height))
	if err != nil {
		if isBadWindow(output) {
			return ErrWindowGone
		}
		return fmt.Errorf("resizing window %s to %dx%d: %w", handle, width, height, err)
	}
	return nil
}

func isBadWindow(output []byte) bool {
	return bytes.Contains(output, []byte("BadWindow")) || bytes.Contains(output, []byte("No such window"))
}
