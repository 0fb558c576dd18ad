// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single place dfolaunch configures CBOR. State
// files written by the launcher (the swap journal) are CBOR with Core
// Deterministic Encoding, so the same logical state always produces
// the same bytes.
package codec
