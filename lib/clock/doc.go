// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the time source used by everything in
// dfolaunch that waits, polls or timestamps.
//
// The launch monitor spends almost its entire life in polling sleeps
// (waiting for the game window to appear, waiting for it to go away,
// waiting for the game process to exit). Production code injects
// Real(); tests inject Fake() and step time forward explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go monitor(fake)
//	fake.WaitForTimers(1)          // the monitor is now parked in a poll
//	fake.Advance(2 * time.Second)  // release exactly one poll
//
// WaitForTimers removes the race between a goroutine registering its
// sleep and the test advancing the clock.
package clock
