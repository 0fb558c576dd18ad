// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import "fmt"

// State is the launch lifecycle state.
type State int

const (
	// StateNone is the initial and terminal state: nothing is running.
	StateNone State = iota

	// StateLogin means the authenticator is being called.
	StateLogin

	// StateLaunching means the helper has been started and the game
	// window has not been seen yet.
	StateLaunching

	// StateGameInProgress means the game window has been confirmed
	// visible and is being tracked.
	StateGameInProgress
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateLogin:
		return "login"
	case StateLaunching:
		return "launching"
	case StateGameInProgress:
		return "game_in_progress"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
