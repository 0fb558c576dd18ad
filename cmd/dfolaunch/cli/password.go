// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dfolaunch/dfolaunch/lib/sealed"
	"github.com/dfolaunch/dfolaunch/lib/secret"
)

// PasswordSource says where a command reads the account password.
// With no file set, the password is prompted for on the terminal.
type PasswordSource struct {
	File         string
	SealedFile   string
	IdentityFile string
}

// AddFlags binds the password flags to flagSet.
func (s *PasswordSource) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.File, "password-file", s.File, "read the password from a plain text file")
	flagSet.StringVar(&s.SealedFile, "sealed-password-file", s.SealedFile, "read the password from an age-encrypted file")
	flagSet.StringVar(&s.IdentityFile, "identity-file", s.IdentityFile, "age identity that decrypts --sealed-password-file")
}

// Merge fills unset fields from fallback, keeping flag values over
// configured ones. A flag naming either file replaces the configured
// source entirely.
func (s PasswordSource) Merge(fallback PasswordSource) PasswordSource {
	if s.File != "" || s.SealedFile != "" {
		if s.IdentityFile == "" {
			s.IdentityFile = fallback.IdentityFile
		}
		return s
	}
	if s.IdentityFile != "" {
		fallback.IdentityFile = s.IdentityFile
	}
	return fallback
}

// terminal abstracts the prompt so tests can drive it.
type terminal interface {
	IsTerminal() bool
	ReadPassword() ([]byte, error)
}

type stdinTerminal struct{}

func (stdinTerminal) IsTerminal() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func (stdinTerminal) ReadPassword() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }

// Read returns the password in a locked buffer. prompt is written to
// promptOutput before reading from the terminal.
func (s PasswordSource) Read(prompt string, promptOutput io.Writer) (*secret.Buffer, error) {
	return s.read(prompt, promptOutput, stdinTerminal{})
}

func (s PasswordSource) read(prompt string, promptOutput io.Writer, tty terminal) (*secret.Buffer, error) {
	switch {
	case s.File != "" && s.SealedFile != "":
		return nil, Validation("--password-file and --sealed-password-file are mutually exclusive")

	case s.File != "":
		buffer, err := secret.ReadFile(s.File)
		if errors.Is(err, os.ErrNotExist) {
			return nil, NotFound("password file %s does not exist", s.File)
		}
		if err != nil {
			return nil, Internal("reading password: %w", err)
		}
		return buffer, nil

	case s.SealedFile != "":
		if s.IdentityFile == "" {
			return nil, Validation("--sealed-password-file requires --identity-file")
		}
		buffer, err := sealed.Open(s.SealedFile, s.IdentityFile)
		if errors.Is(err, os.ErrNotExist) {
			return nil, NotFound("%w", err)
		}
		if err != nil {
			return nil, Internal("reading sealed password: %w", err)
		}
		return buffer, nil
	}

	if !tty.IsTerminal() {
		return nil, Validation("no password source: stdin is not a terminal; use --password-file or --sealed-password-file")
	}
	fmt.Fprint(promptOutput, prompt)
	data, err := tty.ReadPassword()
	fmt.Fprintln(promptOutput)
	if err != nil {
		return nil, Internal("reading password from terminal: %w", err)
	}
	buffer, err := secret.FromBytes(data, "terminal")
	if err != nil {
		return nil, Validation("%w", err)
	}
	return buffer, nil
}
