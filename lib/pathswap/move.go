// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package pathswap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// rename is replaced in tests to inject failures.
var rename = os.Rename

func describeMove(from, to string) string {
	return fmt.Sprintf("rename %s to %s", from, to)
}

func move(from, to string, fileType FileType) error {
	err := rename(from, to)
	if err == nil {
		return nil
	}
	if fileType == FileTypeFile && errors.Is(err, unix.EXDEV) {
		return copyAndRemove(from, to)
	}
	return err
}

func copyAndRemove(from, to string) error {
	source, err := os.Open(from)
	if err != nil {
		return err
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return err
	}
	destination, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		os.Remove(to)
		return fmt.Errorf("copying across filesystems: %w", err)
	}
	if err := destination.Sync(); err != nil {
		destination.Close()
		os.Remove(to)
		return fmt.Errorf("syncing copy: %w", err)
	}
	if err := destination.Close(); err != nil {
		os.Remove(to)
		return fmt.Errorf("closing copy: %w", err)
	}
	if err := os.Remove(from); err != nil {
		os.Remove(to)
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}

// exists treats any Lstat error other than not-exist as existing: a
// path that cannot be inspected is still occupied.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
