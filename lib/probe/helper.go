// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// ExecStarter starts the helper as a child process in its own process
// group, with the helper's directory as working directory.
type ExecStarter struct {
	// Wrapper is prepended to the command line, for example
	// []string{"wine"} to run a Windows helper.
	Wrapper []string

	// Env, when non-nil, replaces the inherited environment.
	Env []string

	// Output receives the helper's stdout and stderr. Nil discards.
	Output io.Writer
}

// StartHelper starts path with argument. ctx only bounds the start
// itself; the helper outlives it.
func (s ExecStarter) StartHelper(ctx context.Context, path, argument string) (Helper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	argv := append(append([]string(nil), s.Wrapper...), path, argument)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(path)
	cmd.Env = s.Env
	cmd.Stdout = s.Output
	cmd.Stderr = s.Output
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}

	helper := &execHelper{cmd: cmd, done: make(chan struct{})}
	go helper.wait()
	return helper, nil
}

type execHelper struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (h *execHelper) wait() {
	h.err = h.cmd.Wait()
	close(h.done)
}

func (h *execHelper) Done() <-chan struct{} { return h.done }

func (h *execHelper) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

func (h *execHelper) Pid() int { return h.cmd.Process.Pid }

func (h *execHelper) Kill() error {
	select {
	case <-h.done:
		return nil
	default:
	}
	// Negative PID addresses the whole process group.
	err := unix.Kill(-h.cmd.Process.Pid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("killing helper process group %d: %w", h.cmd.Process.Pid, err)
	}
	return nil
}
