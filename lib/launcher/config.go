// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/pathswap"
)

// The game renders at a fixed 4:3 aspect ratio.
const (
	aspectWidth  = 4
	aspectHeight = 3
)

// WindowMode selects windowed or full-screen play through an on-disk
// marker directory.
type WindowMode int

const (
	// WindowModeUnspecified leaves the marker untouched.
	WindowModeUnspecified WindowMode = iota
	// WindowModeWindowed creates the marker directory.
	WindowModeWindowed
	// WindowModeFullscreen removes the marker directory.
	WindowModeFullscreen
)

func (m WindowMode) String() string {
	switch m {
	case WindowModeUnspecified:
		return "unspecified"
	case WindowModeWindowed:
		return "windowed"
	case WindowModeFullscreen:
		return "fullscreen"
	default:
		return fmt.Sprintf("window_mode(%d)", int(m))
	}
}

// ParseWindowMode accepts "windowed", "fullscreen" and "unspecified"
// (or the empty string).
func ParseWindowMode(value string) (WindowMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unspecified":
		return WindowModeUnspecified, nil
	case "windowed":
		return WindowModeWindowed, nil
	case "fullscreen", "full-screen":
		return WindowModeFullscreen, nil
	default:
		return WindowModeUnspecified, fmt.Errorf("unknown window mode %q (want windowed, fullscreen or unspecified)", value)
	}
}

// Config holds every tunable of a launch. The launcher copies it with
// Clone when a launch starts, so later SetConfig calls never reach a
// running monitor.
type Config struct {
	Username string
	Password string

	// InstallDir is the game directory. Relative swap paths and the
	// helper executable are resolved against it.
	InstallDir string

	// HelperExecutable is started with the launch token as its only
	// argument. Relative to InstallDir unless absolute.
	HelperExecutable string

	// GameProcessName is matched against running process names.
	GameProcessName string

	// WindowClass identifies the game's top-level window.
	WindowClass string

	// LoginTimeout bounds the authenticator call. Zero means no
	// timeout.
	LoginTimeout time.Duration

	WindowMode WindowMode

	// WindowedMarker is the directory inside InstallDir whose presence
	// makes the game start windowed.
	WindowedMarker string

	// WindowWidth and WindowHeight request a window size once the game
	// is visible. When only one is set the other follows from the 4:3
	// aspect ratio. Both nil means no resize.
	WindowWidth  *int
	WindowHeight *int

	// ClosePopup kills the game process after its main window closes,
	// taking the trailing advertisement popup with it.
	ClosePopup bool

	// Swaps are applied in order after the helper exits and switched
	// back in the same order after the game exits.
	Swaps []pathswap.Spec

	WindowAppearInterval time.Duration
	WindowGoneInterval   time.Duration
	ProcessGoneInterval  time.Duration

	// CancelExitWait bounds how long a canceled launch waits for the
	// game process to exit before switching files back anyway.
	CancelExitWait time.Duration
}

// DefaultConfig returns a Config with every non-credential field set
// to its default.
func DefaultConfig() Config {
	return Config{
		HelperExecutable:     "DFO.exe",
		GameProcessName:      "DFO",
		WindowClass:          "DFO",
		LoginTimeout:         30 * time.Second,
		WindowedMarker:       "WindowMode",
		WindowAppearInterval: 500 * time.Millisecond,
		WindowGoneInterval:   time.Second,
		ProcessGoneInterval:  250 * time.Millisecond,
		CancelExitWait:       10 * time.Second,
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	clone := c
	if c.WindowWidth != nil {
		width := *c.WindowWidth
		clone.WindowWidth = &width
	}
	if c.WindowHeight != nil {
		height := *c.WindowHeight
		clone.WindowHeight = &height
	}
	if c.Swaps != nil {
		clone.Swaps = append([]pathswap.Spec(nil), c.Swaps...)
	}
	return clone
}

// WindowSize returns the requested window size, deriving a missing
// dimension from the aspect ratio. ok is false when no size is
// requested.
func (c Config) WindowSize() (width, height int, ok bool) {
	switch {
	case c.WindowWidth != nil && c.WindowHeight != nil:
		return *c.WindowWidth, *c.WindowHeight, true
	case c.WindowWidth != nil:
		return *c.WindowWidth, *c.WindowWidth * aspectHeight / aspectWidth, true
	case c.WindowHeight != nil:
		return *c.WindowHeight * aspectWidth / aspectHeight, *c.WindowHeight, true
	default:
		return 0, 0, false
	}
}

// HelperPath returns the helper executable's absolute path.
func (c Config) HelperPath() string {
	if filepath.IsAbs(c.HelperExecutable) {
		return filepath.Clean(c.HelperExecutable)
	}
	return filepath.Join(c.InstallDir, c.HelperExecutable)
}

// Validate reports the first problem with c as a *ValidationError.
func (c Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
	}

	if c.Username == "" {
		return invalid("username", "must not be empty")
	}
	if c.Password == "" {
		return invalid("password", "must not be empty")
	}
	if c.InstallDir == "" {
		return invalid("install_dir", "must not be empty")
	}
	if !filepath.IsAbs(c.InstallDir) {
		return invalid("install_dir", "%q is not an absolute path", c.InstallDir)
	}
	if c.HelperExecutable == "" {
		return invalid("helper_executable", "must not be empty")
	}
	if c.GameProcessName == "" {
		return invalid("game_process_name", "must not be empty")
	}
	if c.WindowClass == "" {
		return invalid("window_class", "must not be empty")
	}
	if c.LoginTimeout < 0 {
		return invalid("login_timeout", "must not be negative (got %s)", c.LoginTimeout)
	}
	switch c.WindowMode {
	case WindowModeUnspecified, WindowModeWindowed, WindowModeFullscreen:
	default:
		return invalid("window_mode", "unknown mode %d", int(c.WindowMode))
	}
	if c.WindowMode != WindowModeUnspecified && !filepath.IsLocal(c.WindowedMarker) {
		return invalid("windowed_marker", "%q must be a relative path inside the install directory", c.WindowedMarker)
	}
	if c.WindowWidth != nil && *c.WindowWidth <= 0 {
		return invalid("window_width", "must be positive (got %d)", *c.WindowWidth)
	}
	if c.WindowHeight != nil && *c.WindowHeight <= 0 {
		return invalid("window_height", "must be positive (got %d)", *c.WindowHeight)
	}
	if width, height, ok := c.WindowSize(); ok && (width <= 0 || height <= 0) {
		return invalid("window_width", "derived window size %dx%d is empty", width, height)
	}
	for _, interval := range []struct {
		name  string
		value time.Duration
	}{
		{"window_appear_interval", c.WindowAppearInterval},
		{"window_gone_interval", c.WindowGoneInterval},
		{"process_gone_interval", c.ProcessGoneInterval},
	} {
		if interval.value <= 0 {
			return invalid(interval.name, "must be positive (got %s)", interval.value)
		}
	}
	if c.CancelExitWait < 0 {
		return invalid("cancel_exit_wait", "must not be negative (got %s)", c.CancelExitWait)
	}
	for index, spec := range c.Swaps {
		if _, err := spec.Resolve(c.InstallDir); err != nil {
			return &ValidationError{Field: fmt.Sprintf("swaps[%d]", index), Err: err}
		}
	}
	return nil
}

// resolved validates c and returns a clone with every swap resolved
// against InstallDir.
func (c Config) resolved() (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	clone := c.Clone()
	clone.InstallDir = filepath.Clean(c.InstallDir)
	for index, spec := range clone.Swaps {
		resolved, err := spec.Resolve(clone.InstallDir)
		if err != nil {
			return Config{}, &ValidationError{Field: fmt.Sprintf("swaps[%d]", index), Err: err}
		}
		clone.Swaps[index] = resolved
	}
	return clone, nil
}
