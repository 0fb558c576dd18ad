// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package probe exposes the operating system primitives the launcher
// needs as small capability interfaces: is a process with a given name
// alive, find a top-level window by class, is it visible, resize it,
// force-terminate a process, and start the helper executable.
//
// The launch monitor only ever talks to [Probe] and [Starter], so tests
// substitute scripted fakes and the monitor never branches on the host
// platform.
//
// [System] is the Linux implementation. Process queries read /proc and
// signal with kill(2). Window queries shell out to xdotool and xwininfo
// through a [Runner], which is the natural seam for a game running
// under Wine on an X11 (or XWayland) display.
package probe
