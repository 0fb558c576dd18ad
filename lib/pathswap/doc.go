// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathswap temporarily substitutes one file or directory for
// another and puts everything back afterwards.
//
// A [Spec] names three paths. While the game runs, the content at
// Custom stands in for Normal, and the displaced original waits at
// Temp:
//
//	before:    Normal=original  Custom=replacement  Temp=(absent)
//	swapped:   Normal=replacement  Custom=(absent)  Temp=original
//
// [Swap] performs two renames (Normal->Temp, Custom->Normal) and
// [SwitchBack] performs the inverse pair (Normal->Custom, Temp->Normal).
// When the second rename of a pair fails, the first is undone. If the
// undo fails too the three paths are left half-exchanged: the returned
// [*Error] reports Inconsistent() == true, matches [ErrInconsistent],
// and its message leads with "FILESYSTEM IS NOW INCONSISTENT". That is
// the one outcome in which the user's original files may appear lost,
// so callers must surface it rather than log it quietly.
//
// A half-exchanged layout (whether from a failed undo or from a crash
// while the game was running) is recognized by [IsBroken] and repaired
// by [FixBroken]. Temp existing on its own is not broken: that is a
// feature the user has not set up.
//
// All three paths should live on one filesystem. A regular file whose
// rename fails with EXDEV is copied and the source removed; a
// directory is never copied.
package pathswap
