// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogLevel is the level for command loggers. The root command's
// --verbose flag lowers it to debug.
var LogLevel = new(slog.LevelVar)

// NewCommandLogger creates the structured logger for command
// operations: slog.TextHandler when stderr is a terminal, JSON when it
// is piped or redirected.
func NewCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: LogLevel}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
