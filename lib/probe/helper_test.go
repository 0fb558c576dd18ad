// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/testutil"
)

type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(data []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(data)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helper.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecStarterPassesArgument(t *testing.T) {
	script := writeScript(t, `echo "token=$1"; pwd`)
	output := &lockedBuffer{}
	starter := ExecStarter{Output: output}

	helper, err := starter.StartHelper(context.Background(), script, "secret-token")
	if err != nil {
		t.Fatalf("StartHelper: %v", err)
	}
	testutil.RequireClosed(t, helper.Done(), 10*time.Second, "helper did not exit")
	if err := helper.Err(); err != nil {
		t.Errorf("helper exit error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 2 || lines[0] != "token=secret-token" {
		t.Fatalf("helper output = %q", output.String())
	}
	resolvedDir, _ := filepath.EvalSymlinks(filepath.Dir(script))
	resolvedPwd, _ := filepath.EvalSymlinks(lines[1])
	if resolvedPwd != resolvedDir {
		t.Errorf("helper working directory = %q, want %q", lines[1], filepath.Dir(script))
	}
}

func TestExecStarterWrapper(t *testing.T) {
	script := filepath.Join(t.TempDir(), "DFO.exe")
	if err := os.WriteFile(script, []byte("echo wrapped \"$1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := &lockedBuffer{}
	starter := ExecStarter{Wrapper: []string{"/bin/sh"}, Output: output}

	helper, err := starter.StartHelper(context.Background(), script, "tok")
	if err != nil {
		t.Fatalf("StartHelper: %v", err)
	}
	testutil.RequireClosed(t, helper.Done(), 10*time.Second, "helper did not exit")
	if got := strings.TrimSpace(output.String()); got != "wrapped tok" {
		t.Errorf("output = %q, want %q", got, "wrapped tok")
	}
}

func TestExecStarterKill(t *testing.T) {
	script := writeScript(t, "sleep 60")
	helper, err := ExecStarter{}.StartHelper(context.Background(), script, "tok")
	if err != nil {
		t.Fatalf("StartHelper: %v", err)
	}
	if helper.Pid() <= 0 {
		t.Errorf("Pid = %d", helper.Pid())
	}
	if err := helper.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	testutil.RequireClosed(t, helper.Done(), 10*time.Second, "killed helper did not exit")
	if helper.Err() == nil {
		t.Error("killed helper reported a clean exit")
	}
	if err := helper.Kill(); err != nil {
		t.Errorf("Kill after exit = %v, want nil", err)
	}
}

func TestExecStarterMissingExecutable(t *testing.T) {
	_, err := ExecStarter{}.StartHelper(context.Background(), filepath.Join(t.TempDir(), "absent"), "tok")
	if err == nil {
		t.Fatal("StartHelper of a missing executable succeeded")
	}
}

func TestExecStarterCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (ExecStarter{}).StartHelper(ctx, "/bin/true", "tok"); err == nil {
		t.Fatal("StartHelper with a canceled context succeeded")
	}
}
