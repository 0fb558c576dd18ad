// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the dfolaunch binary.
//
// Release builds inject the version and commit through -ldflags:
//
//	go build -ldflags "-X github.com/dfolaunch/dfolaunch/lib/version.Version=1.2.0 \
//	    -X github.com/dfolaunch/dfolaunch/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Builds without ldflags fall back to the VCS stamp the Go toolchain
// embeds in the binary.
package version
