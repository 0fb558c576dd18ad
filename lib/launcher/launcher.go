// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dfolaunch/dfolaunch/lib/clock"
	"github.com/dfolaunch/dfolaunch/lib/pathswap"
	"github.com/dfolaunch/dfolaunch/lib/probe"
	"github.com/dfolaunch/dfolaunch/lib/swapjournal"
)

// Authenticator exchanges credentials for a launch token. The launcher
// bounds ctx with Config.LoginTimeout.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (token string, err error)
}

// Journal persists swap intent across crashes. *swapjournal.Journal
// implements it.
type Journal interface {
	Record(spec pathswap.Spec, launchID string, at time.Time) error
	Remove(spec pathswap.Spec) error
	Entries() ([]swapjournal.Entry, error)
}

// Options are the collaborators of a Launcher.
type Options struct {
	Authenticator Authenticator
	Probe         probe.Probe
	Starter       probe.Starter

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Journal is optional. Without it a crash mid-game leaves swaps
	// for IsBroken to discover from the configured list alone.
	Journal Journal

	// NewLaunchID defaults to random UUIDs.
	NewLaunchID func() string
}

// Launcher is the entry point for launching the game. All methods are
// safe for concurrent use.
type Launcher struct {
	authenticator Authenticator
	probe         probe.Probe
	starter       probe.Starter
	clock         clock.Clock
	logger        *slog.Logger
	journal       Journal
	newLaunchID   func() string

	mu        sync.Mutex
	state     State
	config    Config
	launchID  string
	setup     *pendingLaunch
	run       *monitorRun
	repairing bool
	closed    bool
	window    probe.WindowHandle
	hasWindow bool

	subscribers    []subscriber
	nextSubscriber uint64
}

// pendingLaunch is a Launch call between claiming the launcher and
// spawning the monitor.
type pendingLaunch struct {
	cancel context.CancelFunc
}

// monitorRun is a running monitor goroutine.
type monitorRun struct {
	launchID string
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

type subscriber struct {
	id      uint64
	handler func(Event)
}

// New returns a Launcher in StateNone with DefaultConfig.
func New(options Options) *Launcher {
	l := &Launcher{
		authenticator: options.Authenticator,
		probe:         options.Probe,
		starter:       options.Starter,
		clock:         options.Clock,
		logger:        options.Logger,
		journal:       options.Journal,
		newLaunchID:   options.NewLaunchID,
		config:        DefaultConfig(),
	}
	if l.clock == nil {
		l.clock = clock.Real()
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.newLaunchID == nil {
		l.newLaunchID = uuid.NewString
	}
	return l
}

// SetConfig replaces the live configuration. A running launch keeps
// the snapshot it started with.
func (l *Launcher) SetConfig(config Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config = config.Clone()
}

// Config returns a copy of the live configuration.
func (l *Launcher) Config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config.Clone()
}

// State returns the current state.
func (l *Launcher) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Subscribe registers handler for every future event and returns a
// function that removes it.
func (l *Launcher) Subscribe(handler func(Event)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSubscriber++
	id := l.nextSubscriber
	l.subscribers = append(l.subscribers, subscriber{id: id, handler: handler})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for index, entry := range l.subscribers {
			if entry.id == id {
				l.subscribers = append(l.subscribers[:index:index], l.subscribers[index+1:]...)
				return
			}
		}
	}
}

// Launch starts a launch with the current configuration. It returns
// once the helper has been started and the monitor is running, or with
// an error after returning the launcher to StateNone. ctx bounds the
// setup (login and helper start) only.
func (l *Launcher) Launch(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.repairing {
		state := l.state
		l.mu.Unlock()
		return &StateError{Op: "launch", State: state, Err: ErrRepairInProgress}
	}
	if l.state != StateNone || l.setup != nil || l.run != nil {
		state := l.state
		l.mu.Unlock()
		return &StateError{Op: "launch", State: state, Err: ErrLaunchInProgress}
	}
	config := l.config.Clone()
	launchID := l.newLaunchID()
	setupCtx, cancel := context.WithCancel(ctx)
	setup := &pendingLaunch{cancel: cancel}
	l.setup = setup
	l.launchID = launchID
	l.mu.Unlock()

	logger := l.logger.With("launch_id", launchID)
	err := l.setUp(setupCtx, setup, config, launchID, logger)
	cancel()
	if err != nil {
		logger.Warn("launch failed", "error", err)
		l.publish(LaunchFailed{LaunchID: launchID, Err: err})
		l.abandon(setup)
		return err
	}
	return nil
}

func (l *Launcher) setUp(ctx context.Context, setup *pendingLaunch, config Config, launchID string, logger *slog.Logger) error {
	config, err := config.resolved()
	if err != nil {
		return err
	}

	if err := l.applyWindowMode(config, launchID, logger); err != nil {
		return err
	}

	if !l.advance(setup, launchID, StateLogin) {
		return ErrCanceled
	}

	loginCtx := ctx
	if config.LoginTimeout > 0 {
		var cancel context.CancelFunc
		loginCtx, cancel = context.WithTimeout(ctx, config.LoginTimeout)
		defer cancel()
	}
	logger.Info("authenticating", "username", config.Username)
	token, err := l.authenticator.Authenticate(loginCtx, config.Username, config.Password)
	if err == nil && token == "" {
		err = errors.New("authenticator returned an empty launch token")
	}
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		return &AuthError{Username: config.Username, Err: err}
	}

	helperPath := config.HelperPath()
	helper, err := l.starter.StartHelper(ctx, helperPath, token)
	if err != nil {
		return &ProcessStartError{Path: helperPath, Err: err}
	}
	logger.Info("helper started", "path", helperPath, "pid", helper.Pid())

	monitorCtx, monitorCancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &monitorRun{
		launchID: launchID,
		ctx:      monitorCtx,
		cancel:   monitorCancel,
		done:     make(chan struct{}),
	}

	l.mu.Lock()
	if l.setup != setup {
		// Reset ran while the helper was starting.
		l.mu.Unlock()
		monitorCancel()
		if err := helper.Kill(); err != nil {
			logger.Warn("killing helper after reset", "error", err)
		}
		return ErrCanceled
	}
	l.setup = nil
	l.run = run
	change := l.setStateLocked(StateLaunching)
	l.mu.Unlock()
	l.publish(change)

	go l.monitor(run, config, helper, logger)
	return nil
}

// advance moves a pending launch to state, failing if Reset abandoned
// it.
func (l *Launcher) advance(setup *pendingLaunch, launchID string, state State) bool {
	l.mu.Lock()
	if l.setup != setup {
		l.mu.Unlock()
		return false
	}
	change := l.setStateLocked(state)
	l.mu.Unlock()
	l.publish(change)
	return true
}

// abandon returns a failed pending launch to StateNone unless a Reset
// has already done so.
func (l *Launcher) abandon(setup *pendingLaunch) {
	l.mu.Lock()
	if l.setup != setup {
		l.mu.Unlock()
		return
	}
	l.setup = nil
	change := l.setStateLocked(StateNone)
	l.mu.Unlock()
	l.publish(change)
}

// Reset cancels whatever is in progress and blocks until the launcher
// is in StateNone. With a monitor running this waits for its teardown,
// including switching swapped files back.
func (l *Launcher) Reset() {
	l.mu.Lock()
	if run := l.run; run != nil {
		run.cancel()
		l.mu.Unlock()
		<-run.done
		return
	}
	if l.setup != nil {
		l.setup.cancel()
		l.setup = nil
	}
	change := l.setStateLocked(StateNone)
	l.mu.Unlock()
	l.publish(change)
}

// Wait blocks until no monitor is running or ctx is done.
func (l *Launcher) Wait(ctx context.Context) error {
	l.mu.Lock()
	run := l.run
	l.mu.Unlock()
	if run == nil {
		return nil
	}
	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close resets the launcher and rejects later launches with
// ErrClosed. Closing twice is a no-op.
func (l *Launcher) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	l.Reset()
	return nil
}

// resizeTimeout bounds a single ResizeWindow request.
const resizeTimeout = 5 * time.Second

// ResizeWindow resizes the tracked game window and returns the outcome.
// The request is bounded by resizeTimeout and canceled by Reset; it
// never publishes events.
func (l *Launcher) ResizeWindow(width, height int) error {
	if width <= 0 || height <= 0 {
		return &ValidationError{Field: "window size", Err: fmt.Errorf("%dx%d is not a positive size", width, height)}
	}
	l.mu.Lock()
	if l.state != StateGameInProgress || !l.hasWindow || l.run == nil {
		state := l.state
		l.mu.Unlock()
		return &StateError{Op: "resize window", State: state, Err: ErrNoWindow}
	}
	handle, run := l.window, l.run
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(run.ctx, resizeTimeout)
	defer cancel()
	logger := l.logger.With("launch_id", run.launchID)
	if err := l.probe.ResizeWindow(ctx, handle, width, height); err != nil {
		logger.Warn("resizing game window failed", "window", handle.String(), "width", width, "height", height, "error", err)
		return fmt.Errorf("resizing window %s to %dx%d: %w", handle, width, height, err)
	}
	logger.Info("game window resized", "window", handle.String(), "width", width, "height", height)
	return nil
}

// resize applies the configured window size from the monitor goroutine.
func (l *Launcher) resize(ctx context.Context, launchID string, handle probe.WindowHandle, width, height int, logger *slog.Logger) {
	if err := l.probe.ResizeWindow(ctx, handle, width, height); err != nil {
		logger.Warn("resizing game window failed",
			"window", handle.String(),
			"width", width,
			"height", height,
			"error", err,
		)
		l.publish(WindowResizeFailed{LaunchID: launchID, Handle: handle, Width: width, Height: height, Err: err})
		return
	}
	logger.Info("game window resized", "window", handle.String(), "width", width, "height", height)
}

// setStateLocked records a transition and returns the event to publish
// once l.mu is released, or nil when state is unchanged.
func (l *Launcher) setStateLocked(state State) Event {
	if l.state == state {
		return nil
	}
	change := StateChanged{LaunchID: l.launchID, From: l.state, To: state, At: l.clock.Now()}
	l.state = state
	return change
}

// publish delivers event to a snapshot of the subscribers. A nil event
// is ignored.
func (l *Launcher) publish(event Event) {
	if event == nil {
		return
	}
	if change, ok := event.(StateChanged); ok {
		l.logger.Debug("state changed", "launch_id", change.LaunchID, "from", change.From.String(), "to", change.To.String())
	}
	l.mu.Lock()
	handlers := make([]func(Event), len(l.subscribers))
	for index, entry := range l.subscribers {
		handlers[index] = entry.handler
	}
	l.mu.Unlock()
	for _, handler := range handlers {
		handler(event)
	}
}
