// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/pathswap"
	"github.com/dfolaunch/dfolaunch/lib/probe"
)

// launchMonitor supervises one launch from helper start to teardown.
// It owns the swap paths from Swap until SwitchBack.
type launchMonitor struct {
	launcher *Launcher
	run      *monitorRun
	config   Config
	helper   probe.Helper
	logger   *slog.Logger

	swapped []*pathswap.Result
}

func (l *Launcher) monitor(run *monitorRun, config Config, helper probe.Helper, logger *slog.Logger) {
	m := &launchMonitor{
		launcher: l,
		run:      run,
		config:   config,
		helper:   helper,
		logger:   logger,
	}
	defer m.finish()

	ctx := run.ctx
	if !m.awaitHelper(ctx) {
		m.revert(ctx)
		return
	}
	m.swapFiles()

	handle, ok := m.awaitWindow(ctx)
	if ok {
		m.enterGame(ctx, handle)
		if m.awaitClose(ctx, handle) {
			m.closePopup(ctx)
		}
	}
	m.revert(ctx)
}

// awaitHelper waits for the helper to exit. On cancellation it kills
// the helper and returns false.
func (m *launchMonitor) awaitHelper(ctx context.Context) bool {
	select {
	case <-m.helper.Done():
		if err := m.helper.Err(); err != nil {
			m.logger.Warn("helper exited with an error", "pid", m.helper.Pid(), "error", err)
		} else {
			m.logger.Info("helper exited", "pid", m.helper.Pid())
		}
		return true
	case <-ctx.Done():
		m.logger.Info("launch canceled while the helper was running")
		if err := m.helper.Kill(); err != nil {
			m.logger.Warn("killing helper", "pid", m.helper.Pid(), "error", err)
		}
		return false
	}
}

func (m *launchMonitor) swapFiles() {
	journal := m.launcher.journal
	for _, spec := range m.config.Swaps {
		logger := m.logger.With("normal", spec.Normal, "custom", spec.Custom)

		if pathswap.IsBroken(spec) {
			logger.Warn("repairing interrupted swap before swapping", "temp", spec.Temp)
			if err := pathswap.FixBroken(spec); err != nil {
				m.reportSwapFailure(pathswap.OpRepair, spec, err)
				continue
			}
		}

		if journal != nil {
			if err := journal.Record(spec, m.run.launchID, m.launcher.clock.Now()); err != nil {
				logger.Warn("recording swap in journal", "error", err)
			}
		}

		result, err := pathswap.Swap(spec)
		if err != nil {
			m.reportSwapFailure(pathswap.OpSwap, spec, err)
			if journal != nil && !isInconsistent(err) {
				if err := journal.Remove(spec); err != nil {
					logger.Warn("removing failed swap from journal", "error", err)
				}
			}
			continue
		}
		logger.Info("swapped", "type", result.FileType().String())
		m.swapped = append(m.swapped, result)
	}
}

// awaitWindow polls until the game window is visible. It returns false
// when canceled or when the game process disappears first.
func (m *launchMonitor) awaitWindow(ctx context.Context) (probe.WindowHandle, bool) {
	prober := m.launcher.probe
	for {
		handle, found, err := prober.FindWindow(ctx, m.config.WindowClass)
		switch {
		case err != nil:
			m.logger.Warn("searching for game window", "class", m.config.WindowClass, "error", err)
		case found:
			visible, err := prober.WindowVisible(ctx, handle)
			if err == nil && visible {
				m.logger.Info("game window visible", "window", handle.String())
				return handle, true
			}
			if err != nil && !errors.Is(err, probe.ErrWindowGone) {
				m.logger.Warn("checking game window visibility", "window", handle.String(), "error", err)
			}
		}

		// No visible window yet, including failed searches.
		alive, err := prober.ProcessAlive(ctx, m.config.GameProcessName)
		if err != nil {
			m.logger.Warn("checking game process", "process", m.config.GameProcessName, "error", err)
		} else if !alive {
			m.logger.Warn("game process exited before its window appeared", "process", m.config.GameProcessName)
			return 0, false
		}

		if !m.sleep(ctx, m.config.WindowAppearInterval) {
			return 0, false
		}
	}
}

func (m *launchMonitor) enterGame(ctx context.Context, handle probe.WindowHandle) {
	l := m.launcher
	l.mu.Lock()
	l.window = handle
	l.hasWindow = true
	change := l.setStateLocked(StateGameInProgress)
	l.mu.Unlock()
	l.publish(change)

	if width, height, ok := m.config.WindowSize(); ok {
		l.resize(ctx, m.run.launchID, handle, width, height, m.logger)
	}
}

// awaitClose polls until the game window is hidden or gone. It returns
// true when the closure was observed, false when canceled.
func (m *launchMonitor) awaitClose(ctx context.Context, handle probe.WindowHandle) bool {
	prober := m.launcher.probe
	for {
		if !m.sleep(ctx, m.config.WindowGoneInterval) {
			return false
		}
		visible, err := prober.WindowVisible(ctx, handle)
		if errors.Is(err, probe.ErrWindowGone) || (err == nil && !visible) {
			m.logger.Info("game window closed", "window", handle.String())
			return true
		}
		if err != nil {
			m.logger.Warn("checking game window visibility", "window", handle.String(), "error", err)
			alive, aliveErr := prober.ProcessAlive(ctx, m.config.GameProcessName)
			if aliveErr == nil && !alive {
				m.logger.Info("game process gone while its window could not be queried")
				return true
			}
		}
	}
}

func (m *launchMonitor) closePopup(ctx context.Context) {
	if !m.config.ClosePopup {
		return
	}
	if err := m.launcher.probe.ForceTerminate(ctx, m.config.GameProcessName); err != nil {
		killErr := &PopupKillError{Process: m.config.GameProcessName, Err: err}
		m.logger.Warn("closing popup failed", "error", killErr)
		m.launcher.publish(PopupKillFailed{LaunchID: m.run.launchID, Err: killErr})
		return
	}
	m.logger.Info("popup closed", "process", m.config.GameProcessName)
}

// revert waits for the game process to exit and switches every swap
// back in order.
func (m *launchMonitor) revert(ctx context.Context) {
	if len(m.swapped) == 0 {
		return
	}
	m.awaitProcessExit(ctx)

	journal := m.launcher.journal
	for _, result := range m.swapped {
		spec := result.Spec()
		if err := pathswap.SwitchBack(result); err != nil {
			m.reportSwapFailure(pathswap.OpSwitchBack, spec, err)
			continue
		}
		m.logger.Info("switched back", "normal", spec.Normal, "custom", spec.Custom)
		if journal != nil {
			if err := journal.Remove(spec); err != nil {
				m.logger.Warn("removing swap from journal", "normal", spec.Normal, "error", err)
			}
		}
	}
}

// awaitProcessExit polls until the game process is gone. Once ctx is
// canceled the wait is bounded by CancelExitWait.
func (m *launchMonitor) awaitProcessExit(ctx context.Context) {
	queryCtx := context.WithoutCancel(ctx)
	clock := m.launcher.clock
	var deadline <-chan time.Time
	for {
		alive, err := m.launcher.probe.ProcessAlive(queryCtx, m.config.GameProcessName)
		if err == nil && !alive {
			return
		}
		if err != nil {
			m.logger.Warn("checking game process", "process", m.config.GameProcessName, "error", err)
		}

		canceled := ctx.Done()
		if ctx.Err() != nil {
			canceled = nil
			if deadline == nil {
				if m.config.CancelExitWait == 0 {
					m.logger.Warn("switching files back while the game may still be running")
					return
				}
				deadline = clock.After(m.config.CancelExitWait)
			}
		}

		select {
		case <-clock.After(m.config.ProcessGoneInterval):
		case <-canceled:
		case <-deadline:
			m.logger.Warn("game process still running after cancel, switching files back anyway",
				"process", m.config.GameProcessName,
				"waited", m.config.CancelExitWait.String(),
			)
			return
		}
	}
}

// sleep waits for d, returning false if ctx is done first.
func (m *launchMonitor) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-m.launcher.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *launchMonitor) reportSwapFailure(op string, spec pathswap.Spec, err error) {
	if isInconsistent(err) {
		m.logger.Error("file swap failed", "op", op, "normal", spec.Normal, "inconsistent", true, "error", err)
	} else {
		m.logger.Warn("file swap failed", "op", op, "normal", spec.Normal, "error", err)
	}
	m.launcher.publish(FileSwapFailed{LaunchID: m.run.launchID, Op: op, Spec: spec, Err: err})
}

// finish returns the launcher to StateNone and releases Reset and Wait.
func (m *launchMonitor) finish() {
	l := m.launcher
	l.mu.Lock()
	l.window = 0
	l.hasWindow = false
	l.run = nil
	change := l.setStateLocked(StateNone)
	l.mu.Unlock()
	l.publish(change)
	m.run.cancel()
	close(m.run.done)
	m.logger.Info("launch finished")
}

func isInconsistent(err error) bool {
	var swapErr *pathswap.Error
	return errors.As(err, &swapErr) && swapErr.Inconsistent()
}
