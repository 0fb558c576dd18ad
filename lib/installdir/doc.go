// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package installdir locates the game installation when the
// configuration does not name one.
//
// The DFO_DIR environment variable wins. Otherwise the usual install
// locations inside the active Wine prefix ($WINEPREFIX, then ~/.wine)
// are checked for the helper executable.
package installdir
