// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/clock"
	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/pathswap"
)

var epoch = time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

func openStore(t *testing.T) (*Store, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(epoch)
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"), fake, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, fake
}

func transition(launchID string, from, to launcher.State, at time.Time) launcher.StateChanged {
	return launcher.StateChanged{LaunchID: launchID, From: from, To: to, At: at}
}

func TestCompletedLaunch(t *testing.T) {
	store, _ := openStore(t)

	store.Observe(transition("a", launcher.StateNone, launcher.StateLogin, epoch))
	store.Observe(transition("a", launcher.StateLogin, launcher.StateLaunching, epoch.Add(time.Second)))
	store.Observe(launcher.FileSwapFailed{
		LaunchID: "a",
		Op:       pathswap.OpSwap,
		Spec:     pathswap.Spec{Normal: "/dfo/ImagePacks2"},
		Err:      pathswap.ErrCustomMissing,
	})
	store.Observe(transition("a", launcher.StateLaunching, launcher.StateGameInProgress, epoch.Add(time.Minute)))
	store.Observe(transition("a", launcher.StateGameInProgress, launcher.StateNone, epoch.Add(time.Hour)))

	launches, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(launches) != 1 {
		t.Fatalf("Recent returned %d launches, want 1", len(launches))
	}
	got := launches[0]
	if got.ID != "a" || got.Outcome != OutcomeCompleted || got.FurthestState != "game_in_progress" {
		t.Errorf("launch = %+v", got)
	}
	if !got.StartedAt.Equal(epoch) || !got.EndedAt.Equal(epoch.Add(time.Hour)) {
		t.Errorf("launch times = %s .. %s", got.StartedAt, got.EndedAt)
	}
	if got.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", got.FailureCount)
	}

	failures, err := store.Failures(context.Background(), "a")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Kind != KindFileSwap || failures[0].Subject != "swap /dfo/ImagePacks2" {
		t.Errorf("failures = %+v", failures)
	}
}

func TestFailedAndAbortedLaunches(t *testing.T) {
	store, fake := openStore(t)

	store.Observe(transition("failed", launcher.StateNone, launcher.StateLogin, epoch))
	fake.Advance(time.Second)
	store.Observe(launcher.LaunchFailed{LaunchID: "failed", Err: errors.New("authenticating neople: wrong password")})
	store.Observe(transition("failed", launcher.StateLogin, launcher.StateNone, epoch.Add(time.Second)))

	later := epoch.Add(time.Minute)
	store.Observe(transition("aborted", launcher.StateNone, launcher.StateLogin, later))
	store.Observe(transition("aborted", launcher.StateLogin, launcher.StateLaunching, later))
	store.Observe(transition("aborted", launcher.StateLaunching, launcher.StateNone, later.Add(time.Second)))

	store.Observe(transition("running", launcher.StateNone, launcher.StateLogin, later.Add(time.Minute)))

	launches, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []struct{ id, outcome, furthest string }{
		{"running", OutcomeRunning, "login"},
		{"aborted", OutcomeAborted, "launching"},
		{"failed", OutcomeFailed, "login"},
	}
	if len(launches) != len(want) {
		t.Fatalf("Recent = %+v", launches)
	}
	for index, expected := range want {
		got := launches[index]
		if got.ID != expected.id || got.Outcome != expected.outcome || got.FurthestState != expected.furthest {
			t.Errorf("launches[%d] = %+v, want %s/%s/%s", index, got, expected.id, expected.outcome, expected.furthest)
		}
	}
	if !launches[0].EndedAt.IsZero() {
		t.Errorf("running launch has an end time %s", launches[0].EndedAt)
	}

	failures, _ := store.Failures(context.Background(), "failed")
	if len(failures) != 1 || failures[0].Kind != KindLaunch || !failures[0].OccurredAt.Equal(epoch.Add(time.Second)) {
		t.Errorf("failures = %+v", failures)
	}
}

func TestLaunchFailedWithoutTransitions(t *testing.T) {
	store, _ := openStore(t)
	store.Observe(launcher.LaunchFailed{LaunchID: "invalid", Err: errors.New("invalid launch configuration")})

	launches, _ := store.Recent(context.Background(), 10)
	if len(launches) != 1 || launches[0].Outcome != OutcomeFailed || launches[0].FurthestState != "none" {
		t.Errorf("launches = %+v", launches)
	}
}

func TestRecentLimit(t *testing.T) {
	store, _ := openStore(t)
	for index, id := range []string{"one", "two", "three"} {
		store.Observe(transition(id, launcher.StateNone, launcher.StateLogin, epoch.Add(time.Duration(index)*time.Hour)))
	}
	launches, _ := store.Recent(context.Background(), 2)
	if len(launches) != 2 || launches[0].ID != "three" || launches[1].ID != "two" {
		t.Errorf("Recent(2) = %+v", launches)
	}
}

func TestObserveThroughLauncherEvents(t *testing.T) {
	store, _ := openStore(t)
	var observer func(launcher.Event) = store.Observe
	observer(&launcher.WindowModeFailed{LaunchID: "w", Path: "/dfo/WindowMode", Err: errors.New("permission denied")})

	failures, _ := store.Failures(context.Background(), "w")
	if len(failures) != 1 || failures[0].Kind != KindWindowMode || failures[0].Subject != "/dfo/WindowMode" {
		t.Errorf("failures = %+v", failures)
	}
}
