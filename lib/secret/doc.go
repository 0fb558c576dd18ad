// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the account password outside the Go heap.
//
// A Buffer is an anonymous mmap region locked into RAM (never swapped)
// and, where the kernel supports it, excluded from core dumps. Close
// zeros, unlocks and unmaps it. The launcher itself only ever sees the
// password as a string at the authenticator boundary; everything
// upstream of that (prompting, reading files, decrypting sealed files)
// keeps it in a Buffer.
package secret
