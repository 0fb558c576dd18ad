// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the dfolaunch binary: a
// tree of [Command] values with pflag flag sets, help output, typo
// suggestions, categorized errors, the command logger, and password
// acquisition from files, sealed files or the terminal.
package cli
