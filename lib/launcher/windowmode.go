// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// applyWindowMode creates or removes the windowed marker. On failure it
// publishes *WindowModeFailed and returns a *WindowModeError unless a
// subscriber chose to proceed.
func (l *Launcher) applyWindowMode(config Config, launchID string, logger *slog.Logger) error {
	if config.WindowMode == WindowModeUnspecified {
		return nil
	}
	path := filepath.Join(config.InstallDir, config.WindowedMarker)
	err := setWindowedMarker(path, config.WindowMode == WindowModeWindowed)
	if err == nil {
		logger.Debug("window mode applied", "mode", config.WindowMode.String(), "marker", path)
		return nil
	}

	event := &WindowModeFailed{LaunchID: launchID, Mode: config.WindowMode, Path: path, Err: err}
	l.publish(event)
	if event.Proceeding() {
		logger.Warn("window mode not applied, proceeding anyway",
			"mode", config.WindowMode.String(),
			"marker", path,
			"error", err,
		)
		return nil
	}
	return &WindowModeError{Mode: config.WindowMode, Path: path, Err: err}
}

func setWindowedMarker(path string, present bool) error {
	if present {
		err := os.Mkdir(path, 0o755)
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrExist) {
			info, statErr := os.Stat(path)
			if statErr == nil && info.IsDir() {
				return nil
			}
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return err
	}

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", path)
	}
	return os.Remove(path)
}
