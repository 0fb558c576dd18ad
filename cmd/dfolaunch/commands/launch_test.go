// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/testutil"
)

func TestLaunchRequiresUsername(t *testing.T) {
	params := &launchParams{configParams: configParams{ConfigPath: writeConfig(t, `
install_dir: /games/dfo
auth:
  command: [dfo-login]
`)}}
	err := runLaunch(context.Background(), params, &bytes.Buffer{}, discard)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestLaunchRequiresAuthCommand(t *testing.T) {
	params := &launchParams{
		configParams: configParams{ConfigPath: writeConfig(t, "install_dir: /games/dfo\n")},
		Username:     "neople",
	}
	err := runLaunch(context.Background(), params, &bytes.Buffer{}, discard)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestLaunchRejectsBadWindowModeFlag(t *testing.T) {
	params := &launchParams{
		configParams: configParams{ConfigPath: writeConfig(t, `
install_dir: /games/dfo
username: neople
auth:
  command: [dfo-login]
`)},
		WindowMode: "borderless",
	}
	err := runLaunch(context.Background(), params, &bytes.Buffer{}, discard)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestProgressReporter(t *testing.T) {
	var output bytes.Buffer
	report := progressReporter(&output, false, discard)
	for _, change := range []launcher.StateChanged{
		{From: launcher.StateNone, To: launcher.StateLogin},
		{From: launcher.StateLogin, To: launcher.StateLaunching},
		{From: launcher.StateLaunching, To: launcher.StateGameInProgress},
		{From: launcher.StateGameInProgress, To: launcher.StateNone},
		{From: launcher.StateLogin, To: launcher.StateNone},
	} {
		report(change)
	}
	want := "Logging in...\nStarting the game...\nGame running.\nGame closed.\nLaunch stopped.\n"
	if output.String() != want {
		t.Errorf("output = %q, want %q", output.String(), want)
	}
}

func TestProgressReporterWindowMode(t *testing.T) {
	strict := &launcher.WindowModeFailed{Mode: launcher.WindowModeWindowed, Err: errors.New("read-only")}
	progressReporter(&bytes.Buffer{}, false, discard)(strict)

	lenient := &launcher.WindowModeFailed{Mode: launcher.WindowModeWindowed, Err: errors.New("read-only")}
	progressReporter(&bytes.Buffer{}, true, discard)(lenient)

	if strict.Proceeding() {
		t.Error("reporter proceeded without --ignore-window-mode-errors")
	}
	if !lenient.Proceeding() {
		t.Error("reporter did not proceed with --ignore-window-mode-errors")
	}
}

func TestLaunchErrorCategories(t *testing.T) {
	var exitErr *cli.ExitError
	if err := launchError(launcher.ErrCanceled, true); !errors.As(err, &exitErr) || exitErr.Code != interruptedExitCode {
		t.Errorf("interrupted cancel = %v, want exit %d", err, interruptedExitCode)
	}
	requireCategory(t, launchError(launcher.ErrCanceled, false), cli.CategoryInternal)
	requireCategory(t, launchError(&launcher.ValidationError{Field: "password", Err: errors.New("required")}, false), cli.CategoryValidation)
	requireCategory(t, launchError(&launcher.StateError{Op: "launch", State: launcher.StateLogin, Err: launcher.ErrLaunchInProgress}, false), cli.CategoryConflict)
	requireCategory(t, launchError(&launcher.AuthError{Username: "neople", Err: errors.New("denied")}, false), cli.CategoryInternal)
}

func TestSignalWatcherResetsOnFirstSignal(t *testing.T) {
	signals := make(chan os.Signal, 2)
	resets := make(chan struct{}, 1)
	quits := make(chan struct{}, 1)
	watcher := &signalWatcher{
		signals: signals,
		reset:   func() { resets <- struct{}{} },
		quit:    func() { quits <- struct{}{} },
		logger:  discard,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.run(make(chan struct{}))
	}()

	signals <- os.Interrupt
	testutil.RequireReceive(t, resets, time.Second, "reset not called")
	testutil.RequireClosed(t, done, time.Second, "watcher did not return after the reset")
	if !watcher.interrupted.Load() {
		t.Error("interrupted not recorded")
	}
	select {
	case <-quits:
		t.Error("quit called after a single signal")
	default:
	}
}

func TestSignalWatcherQuitsOnSecondSignal(t *testing.T) {
	signals := make(chan os.Signal, 2)
	resetting := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	quits := make(chan struct{}, 1)
	watcher := &signalWatcher{
		signals: signals,
		reset: func() {
			close(resetting)
			<-release
		},
		quit:   func() { quits <- struct{}{} },
		logger: discard,
	}
	go watcher.run(make(chan struct{}))

	signals <- os.Interrupt
	testutil.RequireClosed(t, resetting, time.Second, "reset not started")
	signals <- os.Interrupt
	testutil.RequireReceive(t, quits, time.Second, "second signal did not quit while the reset was stuck")
}

func TestSignalWatcherStopsWhenFinished(t *testing.T) {
	signals := make(chan os.Signal, 1)
	watcher := &signalWatcher{
		signals: signals,
		reset:   func() { t.Error("reset called without a signal") },
		quit:    func() { t.Error("quit called without a signal") },
		logger:  discard,
	}
	finished := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.run(finished)
	}()
	close(finished)
	testutil.RequireClosed(t, done, time.Second, "watcher did not return after the launch finished")
}
