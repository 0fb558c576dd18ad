// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package installdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvironmentVariable overrides detection.
const EnvironmentVariable = "DFO_DIR"

// ErrNotFound is returned when no candidate directory holds the
// helper executable.
var ErrNotFound = errors.New("game install directory not found")

// Relative to a Wine prefix.
var prefixLocations = []string{
	"drive_c/Neople/DFO",
	"drive_c/Nexon/DFO",
	"drive_c/Program Files/Neople/DFO",
	"drive_c/Program Files (x86)/Neople/DFO",
	"drive_c/Program Files/Nexon/DFO",
	"drive_c/Program Files (x86)/Nexon/DFO",
}

// Detector finds an install directory. The zero value is not usable;
// use New.
type Detector struct {
	// Getenv looks up environment variables.
	Getenv func(string) string

	// Home is the user's home directory.
	Home string

	// Helper is the file that must exist in the directory.
	Helper string
}

// New returns a Detector for the current process environment that
// looks for helper.
func New(helper string) *Detector {
	home, _ := os.UserHomeDir()
	return &Detector{Getenv: os.Getenv, Home: home, Helper: helper}
}

// Detect is New(helper).Detect().
func Detect(helper string) (string, error) {
	return New(helper).Detect()
}

// Candidates returns the directories Detect checks, in order.
func (d *Detector) Candidates() []string {
	var prefixes []string
	if prefix := d.Getenv("WINEPREFIX"); prefix != "" {
		prefixes = append(prefixes, prefix)
	}
	if d.Home != "" {
		prefixes = append(prefixes, filepath.Join(d.Home, ".wine"))
	}

	var candidates []string
	for _, prefix := range prefixes {
		for _, location := range prefixLocations {
			candidates = append(candidates, filepath.Join(prefix, filepath.FromSlash(location)))
		}
	}
	return candidates
}

// Detect returns the install directory. A DFO_DIR that does not hold
// the helper is an error rather than a reason to keep looking.
func (d *Detector) Detect() (string, error) {
	if configured := d.Getenv(EnvironmentVariable); configured != "" {
		path, err := filepath.Abs(configured)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", EnvironmentVariable, err)
		}
		if !d.holdsHelper(path) {
			return "", fmt.Errorf("%s=%s does not contain %s: %w", EnvironmentVariable, configured, d.Helper, ErrNotFound)
		}
		return path, nil
	}

	for _, candidate := range d.Candidates() {
		if d.holdsHelper(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

func (d *Detector) holdsHelper(directory string) bool {
	info, err := os.Stat(filepath.Join(directory, d.Helper))
	return err == nil && info.Mode().IsRegular()
}
