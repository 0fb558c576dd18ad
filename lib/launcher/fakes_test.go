// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/clock"
	"github.com/dfolaunch/dfolaunch/lib/pathswap"
	"github.com/dfolaunch/dfolaunch/lib/probe"
	"github.com/dfolaunch/dfolaunch/lib/swapjournal"
	"github.com/dfolaunch/dfolaunch/lib/testutil"
)

const eventTimeout = 5 * time.Second

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

var errKilled = errors.New("signal: killed")

type fakeAuthenticator struct {
	mu    sync.Mutex
	calls []string
	token string
	err   error
	// block makes Authenticate wait for ctx to end.
	block bool
}

func (a *fakeAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	a.mu.Lock()
	a.calls = append(a.calls, username+":"+password)
	token, err, block := a.token, a.err, a.block
	a.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return token, err
}

func (a *fakeAuthenticator) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type fakeHelper struct {
	done   chan struct{}
	once   sync.Once
	err    error
	killed atomic.Bool
}

func newFakeHelper() *fakeHelper {
	return &fakeHelper{done: make(chan struct{})}
}

func (h *fakeHelper) exit(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

func (h *fakeHelper) Done() <-chan struct{} { return h.done }

func (h *fakeHelper) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

func (h *fakeHelper) Kill() error {
	h.killed.Store(true)
	h.exit(errKilled)
	return nil
}

func (h *fakeHelper) Pid() int { return 4242 }

type startCall struct {
	path     string
	argument string
}

type fakeStarter struct {
	mu      sync.Mutex
	calls   []startCall
	err     error
	helpers chan *fakeHelper
}

func newFakeStarter() *fakeStarter {
	return &fakeStarter{helpers: make(chan *fakeHelper, 4)}
}

func (s *fakeStarter) StartHelper(_ context.Context, path, argument string) (probe.Helper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, startCall{path: path, argument: argument})
	if s.err != nil {
		return nil, s.err
	}
	helper := newFakeHelper()
	s.helpers <- helper
	return helper, nil
}

func (s *fakeStarter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type resizeCall struct {
	handle        probe.WindowHandle
	width, height int
}

// fakeProbe answers from fields that tests change between polls.
type fakeProbe struct {
	mu           sync.Mutex
	handle       probe.WindowHandle
	findErr      error
	windowFound  bool
	visible      bool
	windowGone   bool
	alive        bool
	resizeErr    error
	terminateErr error
	terminated   []string

	resizes chan resizeCall
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{handle: 0x2800007, alive: true, resizes: make(chan resizeCall, 8)}
}

func (p *fakeProbe) set(change func(*fakeProbe)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	change(p)
}

func (p *fakeProbe) ProcessAlive(context.Context, string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive, nil
}

func (p *fakeProbe) FindWindow(context.Context, string) (probe.WindowHandle, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findErr != nil {
		return 0, false, p.findErr
	}
	if !p.windowFound {
		return 0, false, nil
	}
	return p.handle, true, nil
}

func (p *fakeProbe) WindowVisible(_ context.Context, handle probe.WindowHandle) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.windowGone || handle != p.handle {
		return false, probe.ErrWindowGone
	}
	return p.visible, nil
}

func (p *fakeProbe) ResizeWindow(_ context.Context, handle probe.WindowHandle, width, height int) error {
	p.mu.Lock()
	err := p.resizeErr
	p.mu.Unlock()
	p.resizes <- resizeCall{handle: handle, width: width, height: height}
	return err
}

func (p *fakeProbe) ForceTerminate(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = append(p.terminated, name)
	if p.terminateErr != nil {
		return p.terminateErr
	}
	p.alive = false
	return nil
}

func (p *fakeProbe) terminatedNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.terminated...)
}

// harness wires a Launcher to fakes and a game directory containing
// the SoundPacks scenario.
type harness struct {
	launcher      *Launcher
	clock         *clock.FakeClock
	probe         *fakeProbe
	starter       *fakeStarter
	authenticator *fakeAuthenticator
	journal       *swapjournal.Journal
	installDir    string

	states chan StateChanged
	events chan Event
}

var soundPacks = pathswap.Spec{Normal: "SoundPacks", Custom: "SoundPacksCustom", Temp: "SoundPacksOriginal"}

var gameTree = map[string]string{
	"SoundPacks/bgm.ogg":       "original",
	"SoundPacksCustom/bgm.ogg": "custom",
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	installDir := t.TempDir()
	testutil.WriteTree(t, installDir, gameTree)

	journal, err := swapjournal.Open(filepath.Join(t.TempDir(), "swaps.cbor"))
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}

	h := &harness{
		clock:         clock.Fake(epoch),
		probe:         newFakeProbe(),
		starter:       newFakeStarter(),
		authenticator: &fakeAuthenticator{token: "launch-token"},
		journal:       journal,
		installDir:    installDir,
		states:        make(chan StateChanged, 64),
		events:        make(chan Event, 64),
	}
	launchCount := 0
	h.launcher = New(Options{
		Authenticator: h.authenticator,
		Probe:         h.probe,
		Starter:       h.starter,
		Clock:         h.clock,
		Journal:       journal,
		NewLaunchID: func() string {
			launchCount++
			return fmt.Sprintf("launch-%d", launchCount)
		},
	})
	h.launcher.Subscribe(func(event Event) {
		if change, ok := event.(StateChanged); ok {
			h.states <- change
			return
		}
		h.events <- event
	})

	config := DefaultConfig()
	config.Username = "neople"
	config.Password = "hunter2"
	config.InstallDir = installDir
	config.Swaps = []pathswap.Spec{soundPacks}
	h.launcher.SetConfig(config)
	return h
}

func (h *harness) updateConfig(change func(*Config)) {
	config := h.launcher.Config()
	change(&config)
	h.launcher.SetConfig(config)
}

// expectStates consumes the next transitions and checks their targets.
func (h *harness) expectStates(t *testing.T, want ...State) {
	t.Helper()
	for _, state := range want {
		change := testutil.RequireReceive(t, h.states, eventTimeout, "waiting for transition to %s", state)
		if change.To != state {
			t.Fatalf("transition to %s (from %s), want %s", change.To, change.From, state)
		}
	}
}

// launch starts a launch and returns the helper once the launcher is
// in StateLaunching.
func (h *harness) launch(t *testing.T) *fakeHelper {
	t.Helper()
	if err := h.launcher.Launch(context.Background()); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	h.expectStates(t, StateLogin, StateLaunching)
	return testutil.RequireReceive(t, h.starter.helpers, eventTimeout, "helper was not started")
}

func (h *harness) snapshot(t *testing.T) map[string]string {
	t.Helper()
	return testutil.SnapshotTree(t, h.installDir)
}

// waitForEvent returns the next event of type T, skipping others.
func waitForEvent[T Event](t *testing.T, events <-chan Event) T {
	t.Helper()
	for {
		event := testutil.RequireReceive(t, events, eventTimeout, "waiting for event")
		if typed, ok := event.(T); ok {
			return typed
		}
	}
}
