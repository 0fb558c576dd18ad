// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers for dfolaunch binaries:
// reporting a fatal error to stderr before or after the structured
// logger exists, and mapping command errors to exit codes.
package process
