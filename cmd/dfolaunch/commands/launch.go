// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/auth"
	"github.com/dfolaunch/dfolaunch/lib/clock"
	"github.com/dfolaunch/dfolaunch/lib/history"
	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/probe"
	"github.com/dfolaunch/dfolaunch/lib/swapjournal"
)

// interruptedExitCode is the conventional exit status after SIGINT.
const interruptedExitCode = 130

type launchParams struct {
	configParams
	password cli.PasswordSource

	Username         string
	WindowMode       string
	IgnoreWindowMode bool
	NoHistory        bool
	ShowHelperOutput bool
}

func launchCommand() *cli.Command {
	var params launchParams
	return &cli.Command{
		Name:    "launch",
		Summary: "Log in, start the game and supervise it until it closes",
		Description: `Log in through the configured credential helper, start the game with
the launch token and supervise it. Custom files from the swaps list
stand in for the originals while the game runs and are switched back
once its window closes and the process exits.

SIGINT or SIGTERM cancels the launch at any stage; swapped files are
still restored.`,
		Usage: "dfolaunch launch [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("launch", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.password.AddFlags(flagSet)
			flagSet.StringVarP(&params.Username, "username", "u", "", "account to log in as (overrides the config)")
			flagSet.StringVar(&params.WindowMode, "window-mode", "", "windowed, fullscreen or unspecified (overrides the config)")
			flagSet.BoolVar(&params.IgnoreWindowMode, "ignore-window-mode-errors", false, "launch even if the window mode cannot be applied")
			flagSet.BoolVar(&params.NoHistory, "no-history", false, "do not record this launch in the history database")
			flagSet.BoolVar(&params.ShowHelperOutput, "helper-output", false, "copy the helper's output to stderr")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Launch windowed with a sealed password",
				Command:     "dfolaunch launch --window-mode windowed --sealed-password-file ~/.config/dfolaunch/password.age --identity-file ~/.config/dfolaunch/identity.txt",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runLaunch(ctx, &params, os.Stdout, logger)
		},
	}
}

func runLaunch(ctx context.Context, params *launchParams, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := params.load(logger)
	if err != nil {
		return err
	}
	if params.Username != "" {
		cfg.Username = params.Username
	}
	if params.WindowMode != "" {
		cfg.Window.Mode = params.WindowMode
	}
	if cfg.Username == "" {
		return cli.Validation("no username: set username in the configuration or pass --username")
	}
	if len(cfg.Auth.Command) == 0 {
		return cli.Validation("auth.command is not configured; launching needs a credential helper")
	}
	launchConfig, err := cfg.LaunchConfig()
	if err != nil {
		return cli.Validation("invalid configuration:\n%w", err)
	}

	source := params.password.Merge(cli.PasswordSource{
		File:         cfg.Credentials.PasswordFile,
		SealedFile:   cfg.Credentials.SealedPasswordFile,
		IdentityFile: cfg.Credentials.IdentityFile,
	})
	password, err := source.Read(fmt.Sprintf("Password for %s: ", cfg.Username), os.Stderr)
	if err != nil {
		return err
	}
	defer password.Close()
	launchConfig.Password = password.String()

	authenticator, err := auth.NewCommandAuthenticator(cfg.Auth.Command)
	if err != nil {
		return cli.Validation("auth.command: %w", err)
	}
	journal, err := swapjournal.Open(cfg.Paths.Journal)
	if err != nil {
		return cli.Internal("opening swap journal: %w", err)
	}

	// The store outlives the launcher so the final state change is
	// recorded before it closes.
	var store *history.Store
	if cfg.Paths.History != "" && !params.NoHistory {
		store, err = history.Open(ctx, cfg.Paths.History, clock.Real(), logger)
		if err != nil {
			return cli.Internal("opening launch history: %w", err)
		}
		defer store.Close()
	}

	starter := probe.ExecStarter{Wrapper: cfg.Game.HelperWrapper}
	if params.ShowHelperOutput {
		starter.Output = os.Stderr
	}
	game := launcher.New(launcher.Options{
		Authenticator: authenticator,
		Probe:         probe.NewSystem(),
		Starter:       starter,
		Logger:        logger,
		Journal:       journal,
	})
	defer game.Close()

	if store != nil {
		game.Subscribe(store.Observe)
	}
	game.Subscribe(progressReporter(stdout, params.IgnoreWindowMode, logger))
	game.SetConfig(launchConfig)

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	finished := make(chan struct{})
	defer close(finished)
	watcher := &signalWatcher{
		signals: signals,
		reset:   game.Reset,
		quit:    func() { os.Exit(interruptedExitCode) },
		logger:  logger,
	}
	go watcher.run(finished)

	if err := game.Launch(ctx); err != nil {
		return launchError(err, watcher.interrupted.Load())
	}
	if err := game.Wait(ctx); err != nil {
		return cli.Internal("waiting for the game: %w", err)
	}
	if watcher.interrupted.Load() {
		return &cli.ExitError{Code: interruptedExitCode}
	}
	return nil
}

// signalWatcher resets the launch on the first signal and quits on a
// second one that arrives before the reset finishes.
type signalWatcher struct {
	signals     <-chan os.Signal
	reset       func()
	quit        func()
	logger      *slog.Logger
	interrupted atomic.Bool
}

func (w *signalWatcher) run(finished <-chan struct{}) {
	var received os.Signal
	select {
	case received = <-w.signals:
	case <-finished:
		return
	}
	w.logger.Info("canceling launch, signal again to quit without restoring files", "signal", received.String())
	w.interrupted.Store(true)

	resetDone := make(chan struct{})
	go func() {
		defer close(resetDone)
		w.reset()
	}()
	select {
	case received = <-w.signals:
		w.logger.Error("quitting before swapped files were restored, run dfolaunch repair", "signal", received.String())
		w.quit()
	case <-resetDone:
	case <-finished:
	}
}

// launchError categorizes a Launch failure.
func launchError(err error, interrupted bool) error {
	var validationErr *launcher.ValidationError
	var stateErr *launcher.StateError
	switch {
	case interrupted && errors.Is(err, launcher.ErrCanceled):
		return &cli.ExitError{Code: interruptedExitCode}
	case errors.As(err, &validationErr):
		return cli.Validation("%w", err)
	case errors.As(err, &stateErr):
		return cli.Conflict("%w", err)
	default:
		return cli.Internal("%w", err)
	}
}

// progressReporter prints state changes for the user and decides
// whether a failed window mode change aborts the launch.
func progressReporter(w io.Writer, ignoreWindowMode bool, logger *slog.Logger) func(launcher.Event) {
	return func(event launcher.Event) {
		switch event := event.(type) {
		case launcher.StateChanged:
			if message := stateMessage(event); message != "" {
				fmt.Fprintln(w, message)
			}
		case *launcher.WindowModeFailed:
			if ignoreWindowMode {
				logger.Warn("launching without the requested window mode", "mode", event.Mode.String(), "error", event.Err)
				event.Proceed()
			}
		}
	}
}

func stateMessage(change launcher.StateChanged) string {
	switch change.To {
	case launcher.StateLogin:
		return "Logging in..."
	case launcher.StateLaunching:
		return "Starting the game..."
	case launcher.StateGameInProgress:
		return "Game running."
	case launcher.StateNone:
		if change.From == launcher.StateGameInProgress {
			return "Game closed."
		}
		return "Launch stopped."
	}
	return ""
}
