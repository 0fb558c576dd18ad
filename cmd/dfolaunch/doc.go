// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Dfolaunch logs in to Dungeon Fighter Online, starts the game under
// Wine and supervises it: custom game files are swapped in for the
// duration of the session and the originals restored afterwards.
//
// Run "dfolaunch --help" for the command list.
package main
