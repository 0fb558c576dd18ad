// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit code
// and whose command has already written its output.
type exitCoder interface {
	ExitCode() int
}

// Report writes err to w and returns the exit code main should use.
// Errors carrying an ExitCode are not printed.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}

// Fatal reports err on stderr and exits. Use it in main() for errors
// from run().
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}
