// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package pathswap

import (
	"fmt"
	"os"
	"path/filepath"
)

// Spec names the three paths of one swap.
type Spec struct {
	// Normal is where the game expects to find the content.
	Normal string

	// Custom holds the content that stands in for Normal while the
	// game runs.
	Custom string

	// Temp is where the original content of Normal waits while it is
	// displaced.
	Temp string
}

// String formats the spec for logs and error messages.
func (s Spec) String() string {
	return fmt.Sprintf("{normal=%s custom=%s temp=%s}", s.Normal, s.Custom, s.Temp)
}

// Resolve returns a copy of s with every relative path joined onto
// base and every path cleaned. All three paths must be non-empty and
// distinct after resolution.
func (s Spec) Resolve(base string) (Spec, error) {
	resolve := func(field, path string) (string, error) {
		if path == "" {
			return "", fmt.Errorf("swap %s path is empty", field)
		}
		if !filepath.IsAbs(path) {
			if base == "" {
				return "", fmt.Errorf("swap %s path %q is relative and no base directory is set", field, path)
			}
			path = filepath.Join(base, path)
		}
		return filepath.Clean(path), nil
	}

	var resolved Spec
	var err error
	if resolved.Normal, err = resolve("normal", s.Normal); err != nil {
		return Spec{}, err
	}
	if resolved.Custom, err = resolve("custom", s.Custom); err != nil {
		return Spec{}, err
	}
	if resolved.Temp, err = resolve("temp", s.Temp); err != nil {
		return Spec{}, err
	}
	if resolved.Normal == resolved.Custom || resolved.Normal == resolved.Temp || resolved.Custom == resolved.Temp {
		return Spec{}, fmt.Errorf("swap paths must be distinct: %s", resolved)
	}
	return resolved, nil
}

// FileType distinguishes what a swap moves. Renames behave the same
// for both, but only regular files may be copied across filesystems.
type FileType int

const (
	FileTypeFile FileType = iota
	FileTypeDirectory
)

func (t FileType) String() string {
	if t == FileTypeDirectory {
		return "directory"
	}
	return "file"
}

func fileTypeOf(info os.FileInfo) FileType {
	if info.IsDir() {
		return FileTypeDirectory
	}
	return FileTypeFile
}
