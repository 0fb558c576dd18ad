// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNoToken is returned when the helper succeeds but prints nothing.
var ErrNoToken = errors.New("credential helper printed no token")

// waitDelay bounds how long a killed helper's pipes may stay open.
const waitDelay = 2 * time.Second

// CommandAuthenticator runs Command to log in.
type CommandAuthenticator struct {
	// Command is the helper argv; the username is appended.
	Command []string

	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// NewCommandAuthenticator returns an authenticator for command.
func NewCommandAuthenticator(command []string) (*CommandAuthenticator, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("no credential helper command configured")
	}
	return &CommandAuthenticator{Command: append([]string(nil), command...)}, nil
}

// Authenticate runs the helper under ctx and returns the first line it
// prints.
func (a *CommandAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	args := append(append([]string(nil), a.Command[1:]...), username)
	cmd := exec.CommandContext(ctx, a.Command[0], args...)
	cmd.Env = a.Env
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(password + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("credential helper %s: %w", a.Command[0], ctxErr)
		}
		if message := strings.TrimSpace(stderr.String()); message != "" {
			return "", fmt.Errorf("credential helper %s: %w: %s", a.Command[0], err, message)
		}
		return "", fmt.Errorf("credential helper %s: %w", a.Command[0], err)
	}

	token, _, _ := strings.Cut(strings.TrimSpace(stdout.String()), "\n")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
