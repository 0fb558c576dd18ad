// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package probe

// System is the host [Probe]: process queries from procfs, window
// queries from X11 tooling.
type System struct {
	*Procfs
	*X11
}

// NewSystem returns the probe for the running Linux host.
func NewSystem() *System {
	return &System{
		Procfs: NewProcfs("/proc"),
		X11:    NewX11(OSRunner{}),
	}
}

var _ Probe = (*System)(nil)
