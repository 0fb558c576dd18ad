// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// The kernel truncates comm to TASK_COMM_LEN-1 bytes.
const commLength = 15

// Procfs finds and signals processes by name by scanning a procfs
// mount.
type Procfs struct {
	// Root is the procfs mount point, normally /proc.
	Root string

	kill func(pid int, signal unix.Signal) error
}

// NewProcfs returns a Procfs reading root.
func NewProcfs(root string) *Procfs {
	return &Procfs{Root: root, kill: unix.Kill}
}

// FindPIDs returns the IDs of processes whose name matches name. A
// process matches when its comm equals name or name plus ".exe", case
// insensitively, after the kernel's truncation. Wine reports Windows
// executables by their file name.
func (p *Procfs) FindPIDs(ctx context.Context, name string) ([]int, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.Root, err)
	}

	candidates := []string{truncateComm(name), truncateComm(name + ".exe")}
	var pids []int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(p.Root, entry.Name(), "comm"))
		if err != nil {
			// Exited between ReadDir and ReadFile.
			continue
		}
		comm := strings.TrimRight(string(data), "\n")
		for _, candidate := range candidates {
			if strings.EqualFold(comm, candidate) {
				pids = append(pids, pid)
				break
			}
		}
	}
	return pids, nil
}

// ProcessAlive implements [Probe].
func (p *Procfs) ProcessAlive(ctx context.Context, name string) (bool, error) {
	pids, err := p.FindPIDs(ctx, name)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// ForceTerminate implements [Probe] by sending SIGKILL to every match.
func (p *Procfs) ForceTerminate(ctx context.Context, name string) error {
	pids, err := p.FindPIDs(ctx, name)
	if err != nil {
		return err
	}
	kill := p.kill
	if kill == nil {
		kill = unix.Kill
	}
	var errs []error
	for _, pid := range pids {
		if err := kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			errs = append(errs, fmt.Errorf("killing %s (pid %d): %w", name, pid, err))
		}
	}
	return errors.Join(errs...)
}

func truncateComm(name string) string {
	if len(name) > commLength {
		return name[:commLength]
	}
	return name
}
