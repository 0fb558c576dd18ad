// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// safety valve so individual tests never block forever on a channel.
// They are the only place in the test suite that uses a real
// wall-clock timeout; everything else runs on clock.Fake.
//
// [WriteTree] and [SnapshotTree] build and capture small directory
// trees. The file-switch tests compare snapshots taken before and
// after a swap round trip.
//
// All helpers call t.Fatalf on failure.
package testutil
