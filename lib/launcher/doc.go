// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package launcher drives one game launch from login to teardown.
//
// A [Launcher] owns a four-state machine:
//
//	none -> login -> launching -> game_in_progress -> none
//
// [Launcher.Launch] validates the configuration, applies the windowed
// marker, authenticates, starts the helper executable with the launch
// token and hands a frozen copy of the configuration to a monitor
// goroutine. The monitor waits for the helper to exit, swaps the
// configured files, polls until the game window appears and later
// disappears, optionally kills the trailing popup, waits for the game
// process to exit, switches the files back and returns the machine to
// none. Any error or cancellation short-circuits to none through the
// same teardown, so swapped files are always switched back.
//
// [Launcher.Reset] cancels whatever is in progress and blocks until the
// launcher is back in none. Cancellation is cooperative: the monitor
// only observes it while waiting (for the helper, between polls, while
// waiting for the game process to exit), so a reset can take up to one
// polling interval plus the probe calls of the current poll.
//
// Progress and non-fatal failures are published as [Event] values to
// subscribers registered with [Launcher.Subscribe]. Handlers run
// synchronously on the goroutine that produced the event, which is
// often the monitor, and must not call Reset, Close or Wait.
package launcher
