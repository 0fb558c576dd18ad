// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the dfolaunch command tree: launch, repair,
// history, detect, seal-password and version.
package commands
