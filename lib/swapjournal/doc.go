// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package swapjournal remembers file swaps that have not yet been
// switched back, across process crashes.
//
// The launch monitor records a swap's intent before renaming anything
// and removes the entry once the swap has been switched back (or
// failed cleanly). If the launcher dies while the game runs, the next
// start finds the leftover entries and repairs them even when the
// user has since edited the configured swap list.
//
// The journal is a single CBOR file. Every update writes a temporary
// file in the same directory, fsyncs it, renames it into place and
// fsyncs the directory, so a reader never sees a partial journal. An
// empty journal is represented by the file's absence.
package swapjournal
