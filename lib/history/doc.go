// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package history records launches in a local SQLite database.
//
// A [Store] subscribes to a launcher's events through [Store.Observe].
// Each launch gets one row: when it started and ended, the furthest
// state it reached and its outcome. Every reported failure (file swap,
// popup kill, resize, window mode, the launch itself) gets a row of its
// own. [Store.Recent] and [Store.Failures] read them back for the
// history command.
//
// Outcomes:
//
//   - running: no transition back to none yet.
//   - completed: the game window was seen.
//   - aborted: the launch ended before the window appeared (reset, or
//     the game died).
//   - failed: Launch returned an error.
package history
